package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"Pantry-Service/domain"
	"Pantry-Service/internal/metrics"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type (
	Config struct {
		APIKey  string
		Model   string
		BaseURL string
		Timeout time.Duration
	}

	// PantryItem is the view of one stock row sent along with a suggestion prompt.
	PantryItem struct {
		Name            string  `json:"name"`
		Quantity        float64 `json:"quantity"`
		Unit            string  `json:"unit"`
		ExpiryDate      string  `json:"expiryDate,omitempty"`
		DaysUntilExpiry *int    `json:"daysUntilExpiry,omitempty"`
	}

	Preferences struct {
		CuisineType     string `json:"cuisineType,omitempty"`
		DifficultyLevel string `json:"difficultyLevel,omitempty"`
		MaxPrepMinutes  int    `json:"maxPrepTimeMinutes,omitempty"`
	}

	Client struct {
		httpClient *resty.Client
		apiKey     string
		model      string
		logger     *zap.Logger
	}

	generateRequest struct {
		Contents         []content        `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}

	content struct {
		Parts []part `json:"parts"`
	}

	part struct {
		Text       string      `json:"text,omitempty"`
		InlineData *inlineData `json:"inline_data,omitempty"`
	}

	inlineData struct {
		MimeType string `json:"mime_type"`
		Data     string `json:"data"`
	}

	generationConfig struct {
		Temperature float64 `json:"temperature"`
		TopP        float64 `json:"topP"`
		TopK        int     `json:"topK"`
	}

	generateResponse struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
)

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{
		httpClient: client,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     logger,
	}
}

// Configured reports whether an API key and model are set.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.model != ""
}

// DetectItems asks the model to list the food items visible in image.
// It returns the decoded candidates and the raw model text.
func (c *Client) DetectItems(ctx context.Context, image []byte, mimeType, kind string) ([]domain.ReconcileItem, string, error) {
	parts := []part{
		{Text: detectPrompt(kind)},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
	}

	text, err := c.generate(ctx, "detect", parts, generationConfig{Temperature: 0.2, TopP: 0.8, TopK: 40})
	if err != nil {
		return nil, "", err
	}

	items, err := decodeDetectedItems(text)
	if err != nil {
		metrics.InferenceRequests.WithLabelValues("detect", "undecodable").Inc()
		return nil, text, err
	}
	return items, text, nil
}

// SuggestRecipes asks the model for recipes built around the given stock.
func (c *Client) SuggestRecipes(ctx context.Context, items []PantryItem, prefs Preferences) ([]domain.GeneratedRecipe, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}

	parts := []part{{Text: suggestPrompt(string(itemsJSON), string(prefsJSON))}}
	text, err := c.generate(ctx, "suggest", parts, generationConfig{Temperature: 0.7, TopP: 0.8, TopK: 40})
	if err != nil {
		return nil, err
	}

	recipes, err := decodeRecipes(text)
	if err != nil {
		metrics.InferenceRequests.WithLabelValues("suggest", "undecodable").Inc()
		return nil, err
	}
	return recipes, nil
}

func (c *Client) generate(ctx context.Context, operation string, parts []part, gen generationConfig) (string, error) {
	if !c.Configured() {
		return "", domain.ErrInferenceNotConfigured
	}

	var body generateResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetPathParam("model", c.model).
		SetBody(generateRequest{Contents: []content{{Parts: parts}}, GenerationConfig: gen}).
		SetResult(&body).
		Post("/models/{model}:generateContent")
	if err != nil {
		metrics.InferenceRequests.WithLabelValues(operation, "error").Inc()
		return "", fmt.Errorf("%w: %v", domain.ErrInferenceFailed, err)
	}
	if resp.IsError() {
		metrics.InferenceRequests.WithLabelValues(operation, "error").Inc()
		c.logger.Warn("inference request rejected",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return "", fmt.Errorf("%w: status %d", domain.ErrInferenceFailed, resp.StatusCode())
	}
	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		metrics.InferenceRequests.WithLabelValues(operation, "empty").Inc()
		return "", fmt.Errorf("%w: empty response", domain.ErrInferenceFailed)
	}

	metrics.InferenceRequests.WithLabelValues(operation, "ok").Inc()
	return body.Candidates[0].Content.Parts[0].Text, nil
}

func detectPrompt(kind string) string {
	var source string
	switch kind {
	case domain.ScanKindReceipt:
		source = "a grocery receipt. List every food line item that was purchased"
	case domain.ScanKindMeal:
		source = "a prepared meal. List the ingredients that were used to make it"
	default:
		source = "a fridge, freezer or pantry shelf. List every food item you can see"
	}

	return fmt.Sprintf(
		"You are a food inventory assistant. The image shows %s. "+
			"Respond with a JSON array only, no explanation. Each element has the fields: "+
			"name (singular, lowercase), storage_category (one of produce, dairy, protein, pantry, beverage, condiment, frozen), "+
			"nutritional_type, location (one of fridge, freezer, pantry), quantity (number), unit, "+
			"expiry_date (YYYY-MM-DD estimate), freshness (one of fresh, expiring_soon, expired), "+
			"confidence (0 to 1).",
		source,
	)
}

func suggestPrompt(itemsJSON, prefsJSON string) string {
	return fmt.Sprintf(
		"You are a professional chef. Given these available ingredients with quantities and expiry dates: %s "+
			"and these preferences: %s, suggest 5 realistic recipes that can be prepared mostly from them. "+
			"Prioritize ingredients closest to expiry. "+
			"Respond with a JSON array only. Each recipe has the fields: title, description, prepTimeMinutes, "+
			"cookTimeMinutes, servings, difficultyLevel, cuisineType, "+
			"ingredients (array of objects with name, quantity, unit, optional), instructions (array of strings).",
		itemsJSON, prefsJSON,
	)
}
