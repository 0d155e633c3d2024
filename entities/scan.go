package entities

import (
	"github.com/google/uuid"
)

type Scan struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Kind       string    `json:"kind"` // shelf, receipt, meal
	Location   string    `json:"location"`
	ImageURL   string    `json:"image_url"`
	Status     string    `json:"status"` // Pending, Processed, Failed, Applied
	RawResults string    `json:"raw_results,omitempty" gorm:"type:text"`
	ItemCount  int       `json:"item_count"`

	StockItems []*StockItem `gorm:"foreignKey:ScanID"`
	Timestamp
}
