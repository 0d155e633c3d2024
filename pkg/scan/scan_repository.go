package scan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"Pantry-Service/domain"
	"Pantry-Service/entities"
)

type (
	ScanRepository interface {
		CreateScan(ctx context.Context, scan *entities.Scan) error
		GetScanByID(ctx context.Context, userID, id string) (*entities.Scan, error)
		UpdateScan(ctx context.Context, scan *entities.Scan) error
	}

	scanRepository struct {
		db *gorm.DB
	}
)

func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

func (r *scanRepository) CreateScan(ctx context.Context, scan *entities.Scan) error {
	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(scan).Error
}

func (r *scanRepository) GetScanByID(ctx context.Context, userID, id string) (*entities.Scan, error) {
	var scan entities.Scan
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&scan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrScanNotFound
		}
		return nil, err
	}
	return &scan, nil
}

func (r *scanRepository) UpdateScan(ctx context.Context, scan *entities.Scan) error {
	return r.db.WithContext(ctx).Model(&entities.Scan{}).
		Where("id = ? AND user_id = ?", scan.ID, scan.UserID).
		Updates(map[string]interface{}{
			"status":      scan.Status,
			"raw_results": scan.RawResults,
			"item_count":  scan.ItemCount,
		}).Error
}
