package entities

import (
	"time"

	"github.com/google/uuid"
)

// StockItem is a quantity of one food item held at one storage location.
// A non-nil ConsumedAt marks the row as logically deleted.
type StockItem struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;index:idx_stock_owner_key" json:"user_id"`
	Name            string     `json:"name"`
	NormalizedName  string     `gorm:"index:idx_stock_owner_key" json:"normalized_name"`
	StorageCategory string     `json:"storage_category"` // produce, dairy, protein, pantry, beverage, condiment, frozen
	NutritionalType string     `json:"nutritional_type"`
	Location        string     `gorm:"index:idx_stock_owner_key" json:"location"` // fridge, freezer, pantry
	Quantity        float64    `json:"quantity"`
	Unit            string     `json:"unit"`
	PurchaseDate    *time.Time `json:"purchase_date,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	Freshness       string     `json:"freshness"` // fresh, expiring_soon, expired
	Confidence      float64    `json:"confidence"`
	ScanID          *uuid.UUID `gorm:"type:uuid" json:"scan_id,omitempty"`
	ConsumedAt      *time.Time `gorm:"index" json:"consumed_at,omitempty"`
	ConsumedReason  string     `json:"consumed_reason,omitempty"` // consumed, wasted
	Version         int        `gorm:"not null;default:1" json:"version"`

	Timestamp
}
