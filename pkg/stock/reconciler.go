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
	"Pantry-Service/internal/metrics"
	"Pantry-Service/pkg/matcher"
)

// Store is the part of StockRepository the reconciler writes through.
type Store interface {
	GetActiveStockItems(ctx context.Context, userID string) ([]*entities.StockItem, error)
	CreateStockItem(ctx context.Context, item *entities.StockItem) error
	UpdateStockItem(ctx context.Context, item *entities.StockItem) error
	DeleteStockItem(ctx context.Context, userID, id string) error
}

// Reconciler merges a batch of candidate items into an owner's stock.
// Every item is written on its own; a failing write is reported in the
// response and the rest of the batch carries on.
type Reconciler struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

type candidate struct {
	domain.ReconcileItem
	name     string
	location string
	quantity float64
	purchase *time.Time
	expiry   *time.Time
}

func NewReconciler(store Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, now: time.Now, logger: logger}
}

func (r *Reconciler) Reconcile(ctx context.Context, userID string, req domain.ReconcileRequest) (domain.ReconcileResponse, error) {
	res := domain.ReconcileResponse{
		InsertedItems: []string{},
		UpdatedItems:  []string{},
		DeletedItems:  []string{},
		SkippedItems:  []string{},
	}

	owner, err := uuid.Parse(userID)
	if err != nil {
		return res, domain.ErrParseUUID
	}

	policy, candidates, err := validateBatch(req)
	if err != nil {
		return res, err
	}

	var scanID *uuid.UUID
	if req.ScanID != "" {
		id, err := uuid.Parse(req.ScanID)
		if err != nil {
			return res, domain.ErrParseUUID
		}
		scanID = &id
	}

	snapshot, err := r.store.GetActiveStockItems(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("load stock: %w", err)
	}

	now := r.now()
	touched := make(map[uuid.UUID]bool)

	for _, c := range candidates {
		match := matcher.FindForMerge(snapshot, c.name, c.location)
		if match != nil {
			touched[match.ID] = true
		}

		switch {
		case match == nil && c.quantity == 0:
			res.Skipped++
			res.SkippedItems = append(res.SkippedItems, c.name)

		case match == nil:
			item := newStockItem(owner, c, scanID, now)
			if err := r.store.CreateStockItem(ctx, item); err != nil {
				r.fail(&res, c.name, err)
				continue
			}
			snapshot = append(snapshot, item)
			touched[item.ID] = true
			res.Inserted++
			res.InsertedItems = append(res.InsertedItems, c.name)

		case policy == domain.PolicySkip:
			res.Skipped++
			res.SkippedItems = append(res.SkippedItems, c.name)

		case policy == domain.PolicyReplace && c.quantity == 0:
			if err := r.store.DeleteStockItem(ctx, userID, match.ID.String()); err != nil {
				r.fail(&res, c.name, err)
				continue
			}
			snapshot = without(snapshot, match.ID)
			res.Deleted++
			res.DeletedItems = append(res.DeletedItems, match.Name)

		default:
			next := *match
			switch policy {
			case domain.PolicyReplace:
				next.Quantity = c.quantity
				refresh(&next, c, now)
			case domain.PolicyAdd:
				next.Quantity += c.quantity
			case domain.PolicyLegacy:
				next.Quantity += c.quantity
				refresh(&next, c, now)
			}
			if err := r.store.UpdateStockItem(ctx, &next); err != nil {
				r.fail(&res, c.name, err)
				continue
			}
			*match = next
			res.Updated++
			res.UpdatedItems = append(res.UpdatedItems, c.name)
		}
	}

	if policy == domain.PolicyReplace {
		synced := syncedLocations(req.Location, candidates)
		for _, item := range snapshot {
			if touched[item.ID] || !synced[item.Location] {
				continue
			}
			if err := r.store.DeleteStockItem(ctx, userID, item.ID.String()); err != nil {
				r.fail(&res, item.Name, err)
				continue
			}
			res.Deleted++
			res.DeletedItems = append(res.DeletedItems, item.Name)
		}
	}

	metrics.ReconciledItems.WithLabelValues(policy, "inserted").Add(float64(res.Inserted))
	metrics.ReconciledItems.WithLabelValues(policy, "updated").Add(float64(res.Updated))
	metrics.ReconciledItems.WithLabelValues(policy, "deleted").Add(float64(res.Deleted))
	metrics.ReconciledItems.WithLabelValues(policy, "skipped").Add(float64(res.Skipped))
	metrics.ReconciledItems.WithLabelValues(policy, "failed").Add(float64(len(res.Errors)))

	r.logger.Info("batch reconciled",
		zap.String("user_id", userID),
		zap.String("policy", policy),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("deleted", res.Deleted),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
	)

	return res, nil
}

func (r *Reconciler) fail(res *domain.ReconcileResponse, name string, err error) {
	if errors.Is(err, domain.ErrVersionConflict) {
		metrics.VersionConflicts.Inc()
	}
	r.logger.Warn("reconcile item failed", zap.String("item", name), zap.Error(err))
	res.Errors = append(res.Errors, domain.ItemError{Name: name, Error: err.Error()})
}

// validateBatch checks the whole batch before anything is written and
// resolves each item's location and dates. Policy "" is the legacy mode.
func validateBatch(req domain.ReconcileRequest) (string, []candidate, error) {
	if len(req.Items) == 0 {
		return "", nil, domain.ErrEmptyBatch
	}

	policy := req.Policy
	switch policy {
	case "":
		policy = domain.PolicyLegacy
	case domain.PolicyReplace, domain.PolicyAdd, domain.PolicySkip, domain.PolicyLegacy:
	default:
		return "", nil, domain.ErrInvalidPolicy
	}

	if req.Location != "" && !domain.IsValidLocation(req.Location) {
		return "", nil, domain.ErrInvalidLocation
	}

	candidates := make([]candidate, 0, len(req.Items))
	for i, item := range req.Items {
		c := candidate{ReconcileItem: item, name: strings.TrimSpace(item.Name)}
		if c.name == "" {
			return "", nil, fmt.Errorf("item %d: %w", i+1, domain.ErrMissingItemName)
		}
		if item.Quantity == nil || *item.Quantity < 0 {
			return "", nil, fmt.Errorf("item %d (%s): %w", i+1, c.name, domain.ErrInvalidQuantity)
		}
		c.quantity = *item.Quantity

		c.location = item.Location
		if c.location == "" {
			c.location = req.Location
		}
		if !domain.IsValidLocation(c.location) {
			return "", nil, fmt.Errorf("item %d (%s): %w", i+1, c.name, domain.ErrInvalidLocation)
		}

		var err error
		if c.purchase, err = parseDate(item.PurchaseDate); err != nil {
			return "", nil, fmt.Errorf("item %d (%s): %w", i+1, c.name, err)
		}
		if c.expiry, err = parseDate(item.ExpiryDate); err != nil {
			return "", nil, fmt.Errorf("item %d (%s): %w", i+1, c.name, err)
		}
		candidates = append(candidates, c)
	}

	return policy, candidates, nil
}

// syncedLocations are the locations a replace batch is authoritative for:
// the request location when given, otherwise every location in the batch.
func syncedLocations(requested string, candidates []candidate) map[string]bool {
	synced := make(map[string]bool)
	if requested != "" {
		synced[requested] = true
		return synced
	}
	for _, c := range candidates {
		synced[c.location] = true
	}
	return synced
}

func newStockItem(owner uuid.UUID, c candidate, scanID *uuid.UUID, now time.Time) *entities.StockItem {
	item := &entities.StockItem{
		ID:              uuid.New(),
		UserID:          owner,
		Name:            c.name,
		NormalizedName:  matcher.NormalizeName(c.name),
		StorageCategory: c.StorageCategory,
		NutritionalType: c.NutritionalType,
		Location:        c.location,
		Quantity:        c.quantity,
		Unit:            c.Unit,
		PurchaseDate:    c.purchase,
		ExpiryDate:      c.expiry,
		Confidence:      c.Confidence,
		ScanID:          scanID,
		Version:         1,
	}
	item.Freshness = c.Freshness
	if item.Freshness == "" {
		item.Freshness = DeriveFreshness(c.expiry, now)
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return item
}

// refresh copies the descriptive fields the candidate carries onto item.
func refresh(item *entities.StockItem, c candidate, now time.Time) {
	item.Name = c.name
	item.NormalizedName = matcher.NormalizeName(c.name)
	if c.StorageCategory != "" {
		item.StorageCategory = c.StorageCategory
	}
	if c.NutritionalType != "" {
		item.NutritionalType = c.NutritionalType
	}
	if c.Unit != "" {
		item.Unit = c.Unit
	}
	if c.purchase != nil {
		item.PurchaseDate = c.purchase
	}
	if c.expiry != nil {
		item.ExpiryDate = c.expiry
	}
	if c.Confidence > 0 {
		item.Confidence = c.Confidence
	}
	item.Freshness = c.Freshness
	if item.Freshness == "" {
		item.Freshness = DeriveFreshness(item.ExpiryDate, now)
	}
}

func without(items []*entities.StockItem, id uuid.UUID) []*entities.StockItem {
	out := make([]*entities.StockItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}
