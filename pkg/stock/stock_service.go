package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Pantry-Service/domain"
	"Pantry-Service/entities"
	"Pantry-Service/pkg/matcher"
)

type (
	StockService interface {
		AddStockItem(ctx context.Context, req domain.AddStockItemRequest, userID string) (domain.StockItemResponse, error)
		UpdateStockItem(ctx context.Context, id string, req domain.UpdateStockItemRequest, userID string) (domain.StockItemResponse, error)
		DeleteStockItem(ctx context.Context, id string, userID string) error
		GetStockItemByID(ctx context.Context, id string, userID string) (domain.StockItemResponse, error)
		GetStockItems(ctx context.Context, userID string, filter domain.ListStockFilter) ([]domain.StockItemResponse, int64, error)
		ConsumeStockItem(ctx context.Context, id string, req domain.ConsumeStockItemRequest, userID string) error
		GetDashboardStats(ctx context.Context, userID string) (domain.DashboardStatsResponse, error)
		ExportStockItems(ctx context.Context, userID string) ([]byte, error)
		Reconcile(ctx context.Context, req domain.ReconcileRequest, userID string) (domain.ReconcileResponse, error)

		// RefreshFreshness re-tags every active item with an expiry date and
		// returns how many tags changed.
		RefreshFreshness(ctx context.Context) (int, error)
	}

	// ScanRegistry is how the stock service reaches scans it links items to.
	ScanRegistry interface {
		GetScanByID(ctx context.Context, userID, id string) (*entities.Scan, error)
		UpdateScan(ctx context.Context, scan *entities.Scan) error
	}

	stockService struct {
		stockRepository StockRepository
		scans           ScanRegistry
		reconciler      *Reconciler
		now             func() time.Time
		logger          *zap.Logger
	}
)

func NewStockService(stockRepository StockRepository, scans ScanRegistry, logger *zap.Logger) StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &stockService{
		stockRepository: stockRepository,
		scans:           scans,
		reconciler:      NewReconciler(stockRepository, logger.Named("reconciler")),
		now:             time.Now,
		logger:          logger,
	}
}

func (s *stockService) AddStockItem(ctx context.Context, req domain.AddStockItemRequest, userID string) (domain.StockItemResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.StockItemResponse{}, domain.ErrParseUUID
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.StockItemResponse{}, domain.ErrMissingItemName
	}
	if req.Quantity < 0 {
		return domain.StockItemResponse{}, domain.ErrInvalidQuantity
	}
	if !domain.IsValidLocation(req.Location) {
		return domain.StockItemResponse{}, domain.ErrInvalidLocation
	}

	purchase, err := parseDate(req.PurchaseDate)
	if err != nil {
		return domain.StockItemResponse{}, err
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		return domain.StockItemResponse{}, err
	}

	freshness := req.Freshness
	if freshness == "" {
		freshness = DeriveFreshness(expiry, s.now())
	}

	item := &entities.StockItem{
		ID:              uuid.New(),
		UserID:          userUUID,
		Name:            name,
		NormalizedName:  matcher.NormalizeName(name),
		StorageCategory: req.StorageCategory,
		NutritionalType: req.NutritionalType,
		Location:        req.Location,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		PurchaseDate:    purchase,
		ExpiryDate:      expiry,
		Freshness:       freshness,
		Confidence:      1,
		Version:         1,
	}

	if err := s.stockRepository.CreateStockItem(ctx, item); err != nil {
		return domain.StockItemResponse{}, err
	}

	return toResponse(item), nil
}

func (s *stockService) UpdateStockItem(ctx context.Context, id string, req domain.UpdateStockItemRequest, userID string) (domain.StockItemResponse, error) {
	item, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return domain.StockItemResponse{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.StockItemResponse{}, domain.ErrMissingItemName
		}
		item.Name = name
		item.NormalizedName = matcher.NormalizeName(name)
	}
	if req.StorageCategory != nil {
		item.StorageCategory = *req.StorageCategory
	}
	if req.NutritionalType != nil {
		item.NutritionalType = *req.NutritionalType
	}
	if req.Location != nil {
		if !domain.IsValidLocation(*req.Location) {
			return domain.StockItemResponse{}, domain.ErrInvalidLocation
		}
		item.Location = *req.Location
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return domain.StockItemResponse{}, domain.ErrInvalidQuantity
		}
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.ExpiryDate != nil {
		expiry, err := parseDate(*req.ExpiryDate)
		if err != nil {
			return domain.StockItemResponse{}, err
		}
		item.ExpiryDate = expiry
		item.Freshness = DeriveFreshness(expiry, s.now())
	}
	if req.Freshness != nil {
		item.Freshness = *req.Freshness
	}

	if err := s.stockRepository.UpdateStockItem(ctx, item); err != nil {
		return domain.StockItemResponse{}, err
	}

	return toResponse(item), nil
}

func (s *stockService) DeleteStockItem(ctx context.Context, id string, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrParseUUID
	}
	return s.stockRepository.DeleteStockItem(ctx, userID, id)
}

func (s *stockService) GetStockItemByID(ctx context.Context, id string, userID string) (domain.StockItemResponse, error) {
	item, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return domain.StockItemResponse{}, err
	}
	return toResponse(item), nil
}

func (s *stockService) GetStockItems(ctx context.Context, userID string, filter domain.ListStockFilter) ([]domain.StockItemResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	items, count, err := s.stockRepository.GetStockItems(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.StockItemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toResponse(item))
	}

	return response, count, nil
}

func (s *stockService) ConsumeStockItem(ctx context.Context, id string, req domain.ConsumeStockItemRequest, userID string) error {
	if req.Reason != domain.ReasonConsumed && req.Reason != domain.ReasonWasted {
		return domain.ErrInvalidReason
	}

	item, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.stockRepository.ConsumeStockItem(ctx, item, req.Reason, s.now())
}

func (s *stockService) GetDashboardStats(ctx context.Context, userID string) (domain.DashboardStatsResponse, error) {
	return s.stockRepository.GetDashboardStats(ctx, userID)
}

func (s *stockService) ExportStockItems(ctx context.Context, userID string) ([]byte, error) {
	items, err := s.stockRepository.GetActiveStockItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.StockItemResponse, 0, len(items))
	for _, item := range items {
		rows = append(rows, toResponse(item))
	}

	return writeWorkbook(rows)
}

func (s *stockService) Reconcile(ctx context.Context, req domain.ReconcileRequest, userID string) (domain.ReconcileResponse, error) {
	var scan *entities.Scan
	if req.ScanID != "" {
		if _, err := uuid.Parse(req.ScanID); err != nil {
			return domain.ReconcileResponse{}, domain.ErrParseUUID
		}
		if s.scans == nil {
			return domain.ReconcileResponse{}, domain.ErrScanNotFound
		}
		found, err := s.scans.GetScanByID(ctx, userID, req.ScanID)
		if err != nil {
			return domain.ReconcileResponse{}, err
		}
		scan = found
	}

	res, err := s.reconciler.Reconcile(ctx, userID, req)
	if err != nil {
		return res, err
	}

	if scan != nil {
		scan.Status = domain.ScanStatusApplied
		scan.ItemCount = res.Inserted + res.Updated
		if err := s.scans.UpdateScan(ctx, scan); err != nil {
			s.logger.Error("failed to mark scan as applied", zap.String("scan_id", req.ScanID), zap.Error(err))
		}
	}

	return res, nil
}

func (s *stockService) RefreshFreshness(ctx context.Context) (int, error) {
	items, err := s.stockRepository.GetItemsWithExpiry(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	changed := 0
	for _, item := range items {
		tag := DeriveFreshness(item.ExpiryDate, now)
		if tag == item.Freshness {
			continue
		}
		if err := s.stockRepository.UpdateFreshness(ctx, item.ID, tag); err != nil {
			s.logger.Warn("failed to update freshness", zap.String("item_id", item.ID.String()), zap.Error(err))
			continue
		}
		changed++
	}

	return changed, nil
}

func (s *stockService) getOwned(ctx context.Context, id, userID string) (*entities.StockItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrParseUUID
	}
	item, err := s.stockRepository.GetStockItemByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return item, nil
}

func toResponse(item *entities.StockItem) domain.StockItemResponse {
	return domain.StockItemResponse{
		ID:              item.ID.String(),
		Name:            item.Name,
		StorageCategory: item.StorageCategory,
		NutritionalType: item.NutritionalType,
		Location:        item.Location,
		Quantity:        item.Quantity,
		Unit:            item.Unit,
		PurchaseDate:    item.PurchaseDate,
		ExpiryDate:      item.ExpiryDate,
		Freshness:       item.Freshness,
		Confidence:      item.Confidence,
		CreatedAt:       item.CreatedAt,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(domain.DateLayout)
}
