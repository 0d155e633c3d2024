package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	LocationFridge  = "fridge"
	LocationFreezer = "freezer"
	LocationPantry  = "pantry"

	CategoryProduce   = "produce"
	CategoryDairy     = "dairy"
	CategoryProtein   = "protein"
	CategoryPantry    = "pantry"
	CategoryBeverage  = "beverage"
	CategoryCondiment = "condiment"
	CategoryFrozen    = "frozen"

	FreshnessFresh        = "fresh"
	FreshnessExpiringSoon = "expiring_soon"
	FreshnessExpired      = "expired"

	PolicyReplace = "replace"
	PolicyAdd     = "add"
	PolicySkip    = "skip"
	PolicyLegacy  = "legacy"

	ReasonConsumed = "consumed"
	ReasonWasted   = "wasted"

	DateLayout = "2006-01-02"

	// ExpiringSoonDays is the window before expiry in which an item is tagged expiring_soon.
	ExpiringSoonDays = 3
)

var (
	MessageSuccessAddStockItem      = "stock item added successfully"
	MessageSuccessUpdateStockItem   = "stock item updated successfully"
	MessageSuccessDeleteStockItem   = "stock item deleted successfully"
	MessageSuccessGetStockItems     = "stock items retrieved successfully"
	MessageSuccessConsumeStockItem  = "stock item marked as used"
	MessageSuccessReconcile         = "inventory reconciled successfully"
	MessageSuccessGetDashboardStats = "dashboard statistics retrieved successfully"
	MessageSuccessExportStock       = "inventory exported successfully"

	MessageFailedAddStockItem      = "failed to add stock item"
	MessageFailedUpdateStockItem   = "failed to update stock item"
	MessageFailedDeleteStockItem   = "failed to delete stock item"
	MessageFailedGetStockItems     = "failed to retrieve stock items"
	MessageFailedConsumeStockItem  = "failed to mark stock item as used"
	MessageFailedReconcile         = "failed to reconcile inventory"
	MessageFailedGetDashboardStats = "failed to retrieve dashboard statistics"
	MessageFailedExportStock       = "failed to export inventory"

	ErrStockItemNotFound  = fmt.Errorf("stock item %w", ErrNotFound)
	ErrEmptyBatch         = fmt.Errorf("%w: items must not be empty", ErrValidation)
	ErrInvalidPolicy      = fmt.Errorf("%w: policy must be one of replace, add, skip", ErrValidation)
	ErrInvalidLocation    = fmt.Errorf("%w: location must be one of fridge, freezer, pantry", ErrValidation)
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	ErrInvalidDate        = fmt.Errorf("%w: dates must use YYYY-MM-DD", ErrValidation)
	ErrMissingItemName    = fmt.Errorf("%w: item name is required", ErrValidation)
	ErrInvalidReason      = fmt.Errorf("%w: reason must be consumed or wasted", ErrValidation)
	ErrVersionConflict    = errors.New("stock item was modified concurrently")
	ErrUnauthorizedAccess = errors.New("unauthorized access to stock item")
)

var (
	Locations  = []string{LocationFridge, LocationFreezer, LocationPantry}
	Categories = []string{CategoryProduce, CategoryDairy, CategoryProtein, CategoryPantry, CategoryBeverage, CategoryCondiment, CategoryFrozen}
)

func IsValidLocation(location string) bool {
	for _, l := range Locations {
		if l == location {
			return true
		}
	}
	return false
}

type (
	AddStockItemRequest struct {
		Name            string  `json:"name" validate:"required"`
		StorageCategory string  `json:"storage_category" validate:"omitempty,oneof=produce dairy protein pantry beverage condiment frozen"`
		NutritionalType string  `json:"nutritional_type"`
		Location        string  `json:"location" validate:"required,oneof=fridge freezer pantry"`
		Quantity        float64 `json:"quantity" validate:"min=0"`
		Unit            string  `json:"unit"`
		PurchaseDate    string  `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
		ExpiryDate      string  `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
		Freshness       string  `json:"freshness" validate:"omitempty,oneof=fresh expiring_soon expired"`
	}

	UpdateStockItemRequest struct {
		Name            *string  `json:"name" validate:"omitempty,min=1"`
		StorageCategory *string  `json:"storage_category" validate:"omitempty,oneof=produce dairy protein pantry beverage condiment frozen"`
		NutritionalType *string  `json:"nutritional_type"`
		Location        *string  `json:"location" validate:"omitempty,oneof=fridge freezer pantry"`
		Quantity        *float64 `json:"quantity" validate:"omitempty,min=0"`
		Unit            *string  `json:"unit"`
		ExpiryDate      *string  `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
		Freshness       *string  `json:"freshness" validate:"omitempty,oneof=fresh expiring_soon expired"`
	}

	ConsumeStockItemRequest struct {
		Reason string `json:"reason" validate:"required,oneof=consumed wasted"`
	}

	ListStockFilter struct {
		Location  string
		Category  string
		Freshness string
		Page      int
		Limit     int
	}

	StockItemResponse struct {
		ID              string     `json:"id"`
		Name            string     `json:"name"`
		StorageCategory string     `json:"storage_category"`
		NutritionalType string     `json:"nutritional_type"`
		Location        string     `json:"location"`
		Quantity        float64    `json:"quantity"`
		Unit            string     `json:"unit"`
		PurchaseDate    *time.Time `json:"purchase_date,omitempty"`
		ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
		Freshness       string     `json:"freshness"`
		Confidence      float64    `json:"confidence"`
		CreatedAt       time.Time  `json:"created_at"`
	}

	DashboardStatsResponse struct {
		TotalItems        int64 `json:"total_items"`
		FreshItems        int64 `json:"fresh_items"`
		ExpiringSoonItems int64 `json:"expiring_soon_items"`
		ExpiredItems      int64 `json:"expired_items"`
		ConsumedItems     int64 `json:"consumed_items"`
		WastedItems       int64 `json:"wasted_items"`
	}

	// ReconcileItem is one candidate item coming from a scan, a receipt or a manual batch.
	ReconcileItem struct {
		Name            string   `json:"name" validate:"required"`
		StorageCategory string   `json:"storage_category" validate:"omitempty,oneof=produce dairy protein pantry beverage condiment frozen"`
		NutritionalType string   `json:"nutritional_type"`
		Location        string   `json:"location" validate:"omitempty,oneof=fridge freezer pantry"`
		Quantity        *float64 `json:"quantity" validate:"required,min=0"`
		Unit            string   `json:"unit"`
		PurchaseDate    string   `json:"purchase_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
		ExpiryDate      string   `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
		Freshness       string   `json:"freshness" validate:"omitempty,oneof=fresh expiring_soon expired"`
		Confidence      float64  `json:"confidence" validate:"min=0,max=1"`
	}

	ReconcileRequest struct {
		Items    []ReconcileItem `json:"items" validate:"required,min=1,dive"`
		Location string          `json:"location" validate:"omitempty,oneof=fridge freezer pantry"`
		Policy   string          `json:"policy" validate:"omitempty,oneof=replace add skip legacy"`
		ScanID   string          `json:"scan_id" validate:"omitempty,uuid"`
	}

	ReconcileResponse struct {
		Inserted      int         `json:"inserted"`
		Updated       int         `json:"updated"`
		Deleted       int         `json:"deleted"`
		Skipped       int         `json:"skipped"`
		InsertedItems []string    `json:"insertedItems"`
		UpdatedItems  []string    `json:"updatedItems"`
		DeletedItems  []string    `json:"deletedItems"`
		SkippedItems  []string    `json:"skippedItems"`
		Errors        []ItemError `json:"errors,omitempty"`
	}
)
