package inference

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"Pantry-Service/domain"
)

var leadingNumber = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)

type (
	detectedItem struct {
		Name            string      `json:"name"`
		StorageCategory string      `json:"storage_category"`
		NutritionalType string      `json:"nutritional_type"`
		Location        string      `json:"location"`
		Quantity        interface{} `json:"quantity"`
		Unit            string      `json:"unit"`
		ExpiryDate      string      `json:"expiry_date"`
		Freshness       string      `json:"freshness"`
		Confidence      interface{} `json:"confidence"`
	}

	suggestedRecipe struct {
		Title           string                `json:"title"`
		Description     string                `json:"description"`
		PrepTimeMinutes interface{}           `json:"prepTimeMinutes"`
		CookTimeMinutes interface{}           `json:"cookTimeMinutes"`
		Servings        interface{}           `json:"servings"`
		DifficultyLevel string                `json:"difficultyLevel"`
		CuisineType     string                `json:"cuisineType"`
		Ingredients     []suggestedIngredient `json:"ingredients"`
		Instructions    []interface{}         `json:"instructions"`
	}

	suggestedIngredient struct {
		Name     string      `json:"name"`
		Quantity interface{} `json:"quantity"`
		Unit     string      `json:"unit"`
		Optional bool        `json:"optional"`
	}
)

// extractJSON strips markdown code fences and returns the outermost JSON
// array in text. A lone object is wrapped into a one-element array.
func extractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	s = strings.TrimSpace(s)

	start, end := strings.Index(s, "["), strings.LastIndex(s, "]")
	objStart := strings.Index(s, "{")
	if start != -1 && end > start && (objStart == -1 || start < objStart) {
		return s[start : end+1], nil
	}

	objEnd := strings.LastIndex(s, "}")
	if objStart == -1 || objEnd < objStart {
		return "", fmt.Errorf("%w: no JSON in response", domain.ErrInferenceFailed)
	}
	return "[" + s[objStart:objEnd+1] + "]", nil
}

func decodeDetectedItems(text string) ([]domain.ReconcileItem, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var detected []detectedItem
	if err := json.Unmarshal([]byte(raw), &detected); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInferenceFailed, err)
	}

	items := make([]domain.ReconcileItem, 0, len(detected))
	for _, d := range detected {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			continue
		}

		qty, ok := number(d.Quantity)
		if !ok || qty < 0 {
			qty = 1
		}
		confidence, _ := number(d.Confidence)

		items = append(items, domain.ReconcileItem{
			Name:            name,
			StorageCategory: oneOf(strings.ToLower(d.StorageCategory), domain.Categories),
			NutritionalType: d.NutritionalType,
			Location:        oneOf(strings.ToLower(d.Location), domain.Locations),
			Quantity:        &qty,
			Unit:            d.Unit,
			ExpiryDate:      validDate(d.ExpiryDate),
			Freshness:       oneOf(strings.ToLower(d.Freshness), []string{domain.FreshnessFresh, domain.FreshnessExpiringSoon, domain.FreshnessExpired}),
			Confidence:      clamp(confidence, 0, 1),
		})
	}
	return items, nil
}

func decodeRecipes(text string) ([]domain.GeneratedRecipe, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var suggested []suggestedRecipe
	if err := json.Unmarshal([]byte(raw), &suggested); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInferenceFailed, err)
	}

	recipes := make([]domain.GeneratedRecipe, 0, len(suggested))
	for _, s := range suggested {
		title := strings.TrimSpace(s.Title)
		if title == "" {
			continue
		}

		r := domain.GeneratedRecipe{
			Title:           title,
			Description:     s.Description,
			PrepTimeMinutes: intOr(s.PrepTimeMinutes, 15),
			CookTimeMinutes: intOr(s.CookTimeMinutes, 30),
			Servings:        intOr(s.Servings, 4),
			DifficultyLevel: stringOr(s.DifficultyLevel, "Medium"),
			CuisineType:     stringOr(s.CuisineType, "International"),
		}
		for _, ing := range s.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				continue
			}
			r.Ingredients = append(r.Ingredients, domain.IngredientRequirement{
				Name:     strings.TrimSpace(ing.Name),
				Quantity: ing.Quantity,
				Unit:     ing.Unit,
				Optional: ing.Optional,
			})
		}
		for _, step := range s.Instructions {
			r.Instructions = append(r.Instructions, fmt.Sprint(step))
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// number reads a JSON number or a string starting with one.
func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		m := leadingNumber.FindStringSubmatch(n)
		if m == nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(m[1], 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func intOr(v interface{}, fallback int) int {
	n, ok := number(v)
	if !ok || n <= 0 {
		return fallback
	}
	return int(n)
}

func stringOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func oneOf(value string, allowed []string) string {
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return ""
}

func validDate(value string) string {
	if _, err := time.Parse(domain.DateLayout, strings.TrimSpace(value)); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
