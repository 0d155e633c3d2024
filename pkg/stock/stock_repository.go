package stock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"Pantry-Service/domain"
	"Pantry-Service/entities"
)

type (
	StockRepository interface {
		CreateStockItem(ctx context.Context, item *entities.StockItem) error
		GetStockItemByID(ctx context.Context, userID, id string) (*entities.StockItem, error)
		GetStockItems(ctx context.Context, userID string, filter domain.ListStockFilter) ([]*entities.StockItem, int64, error)
		GetActiveStockItems(ctx context.Context, userID string) ([]*entities.StockItem, error)
		UpdateStockItem(ctx context.Context, item *entities.StockItem) error
		ConsumeStockItem(ctx context.Context, item *entities.StockItem, reason string, at time.Time) error
		DeleteStockItem(ctx context.Context, userID, id string) error
		GetDashboardStats(ctx context.Context, userID string) (domain.DashboardStatsResponse, error)

		// Freshness sweep
		GetItemsWithExpiry(ctx context.Context) ([]*entities.StockItem, error)
		UpdateFreshness(ctx context.Context, id uuid.UUID, freshness string) error
	}

	stockRepository struct {
		db *gorm.DB
	}
)

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) CreateStockItem(ctx context.Context, item *entities.StockItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Version == 0 {
		item.Version = 1
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *stockRepository) GetStockItemByID(ctx context.Context, userID, id string) (*entities.StockItem, error) {
	var item entities.StockItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND consumed_at IS NULL", id, userID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStockItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *stockRepository) GetStockItems(ctx context.Context, userID string, filter domain.ListStockFilter) ([]*entities.StockItem, int64, error) {
	var items []*entities.StockItem
	var count int64

	offset := (filter.Page - 1) * filter.Limit

	query := r.db.WithContext(ctx).Model(&entities.StockItem{}).
		Where("user_id = ? AND consumed_at IS NULL", userID)

	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.Category != "" {
		query = query.Where("storage_category = ?", filter.Category)
	}
	if filter.Freshness != "" {
		query = query.Where("freshness = ?", filter.Freshness)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(filter.Limit).
		Order("expiry_date asc").Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, count, nil
}

// GetActiveStockItems returns the owner's whole active inventory in creation order.
func (r *stockRepository) GetActiveStockItems(ctx context.Context, userID string) ([]*entities.StockItem, error) {
	var items []*entities.StockItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND consumed_at IS NULL", userID).
		Order("created_at asc").Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStockItem writes item only if the stored version still equals
// item.Version, and bumps the version on success.
func (r *stockRepository) UpdateStockItem(ctx context.Context, item *entities.StockItem) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&entities.StockItem{}).
		Where("id = ? AND user_id = ? AND version = ? AND consumed_at IS NULL", item.ID, item.UserID, item.Version).
		Updates(map[string]interface{}{
			"name":             item.Name,
			"normalized_name":  item.NormalizedName,
			"storage_category": item.StorageCategory,
			"nutritional_type": item.NutritionalType,
			"location":         item.Location,
			"quantity":         item.Quantity,
			"unit":             item.Unit,
			"purchase_date":    item.PurchaseDate,
			"expiry_date":      item.ExpiryDate,
			"freshness":        item.Freshness,
			"confidence":       item.Confidence,
			"scan_id":          item.ScanID,
			"version":          gorm.Expr("version + 1"),
			"updated_at":       now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}

	item.Version++
	item.UpdatedAt = now
	return nil
}

// ConsumeStockItem soft-deletes item under the same version check as UpdateStockItem.
func (r *stockRepository) ConsumeStockItem(ctx context.Context, item *entities.StockItem, reason string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&entities.StockItem{}).
		Where("id = ? AND user_id = ? AND version = ? AND consumed_at IS NULL", item.ID, item.UserID, item.Version).
		Updates(map[string]interface{}{
			"quantity":        0,
			"consumed_at":     at,
			"consumed_reason": reason,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}

	item.Version++
	item.Quantity = 0
	item.ConsumedAt = &at
	item.ConsumedReason = reason
	return nil
}

func (r *stockRepository) DeleteStockItem(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.StockItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStockItemNotFound
	}
	return nil
}

func (r *stockRepository) GetDashboardStats(ctx context.Context, userID string) (domain.DashboardStatsResponse, error) {
	var stats domain.DashboardStatsResponse

	active := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&entities.StockItem{}).
			Where("user_id = ? AND consumed_at IS NULL", userID)
	}
	used := func(reason string) *gorm.DB {
		return r.db.WithContext(ctx).Model(&entities.StockItem{}).
			Where("user_id = ? AND consumed_at IS NOT NULL AND consumed_reason = ?", userID, reason)
	}

	if err := active().Count(&stats.TotalItems).Error; err != nil {
		return stats, err
	}
	if err := active().Where("freshness = ?", domain.FreshnessFresh).Count(&stats.FreshItems).Error; err != nil {
		return stats, err
	}
	if err := active().Where("freshness = ?", domain.FreshnessExpiringSoon).Count(&stats.ExpiringSoonItems).Error; err != nil {
		return stats, err
	}
	if err := active().Where("freshness = ?", domain.FreshnessExpired).Count(&stats.ExpiredItems).Error; err != nil {
		return stats, err
	}
	if err := used(domain.ReasonConsumed).Count(&stats.ConsumedItems).Error; err != nil {
		return stats, err
	}
	if err := used(domain.ReasonWasted).Count(&stats.WastedItems).Error; err != nil {
		return stats, err
	}

	return stats, nil
}

func (r *stockRepository) GetItemsWithExpiry(ctx context.Context) ([]*entities.StockItem, error) {
	var items []*entities.StockItem
	if err := r.db.WithContext(ctx).
		Where("consumed_at IS NULL AND expiry_date IS NOT NULL").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *stockRepository) UpdateFreshness(ctx context.Context, id uuid.UUID, freshness string) error {
	return r.db.WithContext(ctx).Model(&entities.StockItem{}).
		Where("id = ?", id).
		Update("freshness", freshness).Error
}
