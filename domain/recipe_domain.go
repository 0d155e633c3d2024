package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	StatusAvailable = "available"
	StatusPartial   = "partial"
	StatusMissing   = "missing"
)

var (
	MessageSuccessGetRecipes          = "success get recipes"
	MessageSuccessGetRecipeDetail     = "success get recipe detail"
	MessageSuccessSaveRecipe          = "recipe saved successfully"
	MessageSuccessDeleteRecipe        = "recipe deleted successfully"
	MessageSuccessGetHistory          = "success get recipe history"
	MessageSuccessMarkAsCooked        = "recipe marked as cooked successfully"
	MessageSuccessCheckInventory      = "inventory checked successfully"
	MessageSuccessEmailShoppingList   = "shopping list sent successfully"
	MessageNoIngredientsForSuggestion = "No ingredients available to recommend recipes. Please add food items to your inventory first."

	MessageFailedGetRecipes        = "failed to get recipes"
	MessageFailedGetRecipeDetail   = "failed to get recipe detail"
	MessageFailedSaveRecipe        = "failed to save recipe"
	MessageFailedDeleteRecipe      = "failed to delete recipe"
	MessageFailedGetHistory        = "failed to get recipe history"
	MessageFailedMarkAsCooked      = "failed to mark recipe as cooked"
	MessageFailedCheckInventory    = "failed to check inventory"
	MessageFailedEmailShoppingList = "failed to send shopping list"

	ErrRecipeNotFound    = fmt.Errorf("recipe %w", ErrNotFound)
	ErrGeminiAPIFailed   = errors.New("gemini API processing failed")
	ErrNoIngredients     = errors.New("no ingredients available for recipe generation")
	ErrNoShortages       = fmt.Errorf("%w: nothing is missing, shopping list is empty", ErrValidation)
	ErrInvalidServings   = fmt.Errorf("%w: servings must not be negative", ErrValidation)
	ErrMailerUnavailable = errors.New("mailer is not configured")
)

type (
	// IngredientRequirement is one line of a recipe's ingredient list. Quantity is
	// either a number or free text ("1/2", "a pinch").
	IngredientRequirement struct {
		Name     string `json:"name" validate:"required"`
		Quantity any    `json:"quantity,omitempty"`
		Unit     string `json:"unit"`
		Optional bool   `json:"optional"`
	}

	CreateRecipeRequest struct {
		Title           string                  `json:"title" validate:"required"`
		Description     string                  `json:"description"`
		Servings        int                     `json:"servings" validate:"omitempty,min=1"`
		PrepTimeMinutes int                     `json:"prep_time_minutes" validate:"min=0"`
		CookTimeMinutes int                     `json:"cook_time_minutes" validate:"min=0"`
		DifficultyLevel string                  `json:"difficulty_level"`
		CuisineType     string                  `json:"cuisine_type"`
		Ingredients     []IngredientRequirement `json:"ingredients" validate:"required,min=1,dive"`
		Instructions    []string                `json:"instructions"`
	}

	RecipeRecommendationRequest struct {
		IncludeExpiringOnly bool   `json:"include_expiring_only"`
		CuisineType         string `json:"cuisine_type,omitempty"`
		DifficultyLevel     string `json:"difficulty_level,omitempty"`
		PreparationTime     int    `json:"preparation_time,omitempty"` // in minutes
	}

	Recipe struct {
		ID              string     `json:"id"`
		Title           string     `json:"title"`
		Description     string     `json:"description"`
		ImageURL        string     `json:"image_url,omitempty"`
		PrepTimeMinutes int        `json:"prep_time_minutes"`
		CookTimeMinutes int        `json:"cook_time_minutes"`
		Servings        int        `json:"servings"`
		DifficultyLevel string     `json:"difficulty_level"`
		CuisineType     string     `json:"cuisine_type"`
		IsGenerated     bool       `json:"is_generated"`
		TimesCooked     int        `json:"times_cooked"`
		LastCookedAt    *time.Time `json:"last_cooked_at,omitempty"`
		CreatedAt       time.Time  `json:"created_at"`
	}

	RecipeDetail struct {
		Recipe
		Ingredients  []IngredientRequirement `json:"ingredients"`
		Instructions []string                `json:"instructions"`
	}

	// GeneratedRecipe is what the inference service returns for a suggestion.
	GeneratedRecipe struct {
		Title           string                  `json:"title"`
		Description     string                  `json:"description"`
		PrepTimeMinutes int                     `json:"prepTimeMinutes"`
		CookTimeMinutes int                     `json:"cookTimeMinutes"`
		Servings        int                     `json:"servings"`
		DifficultyLevel string                  `json:"difficultyLevel"`
		CuisineType     string                  `json:"cuisineType"`
		Ingredients     []IngredientRequirement `json:"ingredients"`
		Instructions    []string                `json:"instructions"`
	}

	RecipeRecommendationResponse struct {
		Recipes       []Recipe `json:"recipes"`
		TotalRecipes  int      `json:"total_recipes"`
		ExpiringItems int      `json:"expiring_items"`
	}

	RecipeServings struct {
		RecipeID string  `json:"recipe_id" validate:"required,uuid"`
		Servings float64 `json:"servings" validate:"min=0"`
	}

	CheckInventoryRequest struct {
		Recipes []RecipeServings `json:"recipes" validate:"required,min=1,dive"`
	}

	IngredientStatus struct {
		Name         string  `json:"name"`
		MatchedItem  string  `json:"matched_item,omitempty"`
		RequiredQty  float64 `json:"required_qty"`
		AvailableQty float64 `json:"available_qty"`
		Unit         string  `json:"unit"`
		Status       string  `json:"status"`
		Shortage     float64 `json:"shortage"`
	}

	RecipeAvailability struct {
		RecipeID    string             `json:"recipe_id"`
		RecipeName  string             `json:"recipe_name"`
		Ingredients []IngredientStatus `json:"ingredients"`
	}

	Shortage struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	}

	CheckInventoryResponse struct {
		Recipes        []RecipeAvailability `json:"recipes"`
		TotalShortages []Shortage           `json:"total_shortages"`
		HasShortages   bool                 `json:"has_shortages"`
	}

	EmailShoppingListRequest struct {
		CheckInventoryRequest
		Email string `json:"email" validate:"required,email"`
	}

	MarkAsCookedRequest struct {
		ServingsCooked float64 `json:"servings_cooked" validate:"min=0"`
	}

	InventoryUpdate struct {
		Deducted []string `json:"deducted"`
		NotFound []string `json:"not_found"`
	}

	MarkAsCookedResponse struct {
		TimesCooked      int             `json:"times_cooked"`
		InventoryUpdated InventoryUpdate `json:"inventory_updated"`
		Errors           []ItemError     `json:"errors,omitempty"`
	}

	RecipeHistoryEntry struct {
		RecipeID       string    `json:"recipe_id"`
		RecipeTitle    string    `json:"recipe_title"`
		ServingsCooked float64   `json:"servings_cooked"`
		DeductedCount  int       `json:"deducted_count"`
		MissingCount   int       `json:"missing_count"`
		CookedAt       time.Time `json:"cooked_at"`
	}

	RecipeHistoryResponse struct {
		History []RecipeHistoryEntry `json:"history"`
		Total   int                  `json:"total"`
	}
)
