package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Recipe struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	ImageURL        string         `json:"image_url,omitempty"`
	PrepTimeMinutes int            `json:"prep_time_minutes"`
	CookTimeMinutes int            `json:"cook_time_minutes"`
	Servings        int            `json:"servings"`
	DifficultyLevel string         `json:"difficulty_level"`
	CuisineType     string         `json:"cuisine_type"`
	Ingredients     datatypes.JSON `json:"ingredients"`
	Instructions    datatypes.JSON `json:"instructions"`
	IsGenerated     bool           `json:"is_generated"`
	TimesCooked     int            `gorm:"not null;default:0" json:"times_cooked"`
	LastCookedAt    *time.Time     `json:"last_cooked_at,omitempty"`

	Timestamp
}

type RecipeHistory struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	RecipeID       uuid.UUID `gorm:"type:uuid;index" json:"recipe_id"`
	ServingsCooked float64   `json:"servings_cooked"`
	DeductedCount  int       `json:"deducted_count"`
	MissingCount   int       `json:"missing_count"`
	CookedAt       time.Time `gorm:"type:timestamp" json:"cooked_at"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID"`
}
