package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Pantry-Service/domain"
	"Pantry-Service/entities"
	"Pantry-Service/internal/metrics"
	"Pantry-Service/pkg/matcher"
)

// maxCommitAttempts bounds the re-read and retry cycle of one stock write
// that keeps losing its version check.
const maxCommitAttempts = 3

type (
	// StockStore is the part of the stock repository the deductor needs.
	StockStore interface {
		GetActiveStockItems(ctx context.Context, userID string) ([]*entities.StockItem, error)
		GetStockItemByID(ctx context.Context, userID, id string) (*entities.StockItem, error)
		UpdateStockItem(ctx context.Context, item *entities.StockItem) error
		ConsumeStockItem(ctx context.Context, item *entities.StockItem, reason string, at time.Time) error
	}

	// Demand is one recipe's ingredient list scaled by Ratio.
	Demand struct {
		Ingredients []domain.IngredientRequirement
		Ratio       decimal.Decimal
	}

	// Outcome is the result for one non-optional ingredient.
	Outcome struct {
		Name      string
		Unit      string
		Status    string
		Required  decimal.Decimal
		Available decimal.Decimal
		Shortage  decimal.Decimal
		Item      *entities.StockItem
	}

	CommitResult struct {
		Outcomes []Outcome
		Deducted []string
		NotFound []string
		Errors   []domain.ItemError
	}

	Deductor struct {
		store  StockStore
		now    func() time.Time
		logger *zap.Logger
	}

	// pass is an in-memory view of stock that deductions are applied to in
	// order, so later ingredients see what earlier ones used up.
	pass struct {
		items     []*entities.StockItem
		remaining map[uuid.UUID]decimal.Decimal
	}
)

func NewDeductor(store StockStore, logger *zap.Logger) *Deductor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deductor{store: store, now: time.Now, logger: logger}
}

func newPass(stock []*entities.StockItem) *pass {
	p := &pass{remaining: make(map[uuid.UUID]decimal.Decimal, len(stock))}
	for _, item := range stock {
		if item == nil || item.ConsumedAt != nil {
			continue
		}
		qty := quantize(decimal.NewFromFloat(item.Quantity))
		if !qty.IsPositive() {
			continue
		}
		cp := *item
		p.items = append(p.items, &cp)
		p.remaining[cp.ID] = qty
	}
	return p
}

func (p *pass) apply(demand Demand) []Outcome {
	outcomes := make([]Outcome, 0, len(demand.Ingredients))
	for _, ing := range demand.Ingredients {
		if ing.Optional || strings.TrimSpace(ing.Name) == "" {
			continue
		}

		qty, _ := ParseQuantity(ing.Quantity)
		out := Outcome{
			Name:     strings.TrimSpace(ing.Name),
			Unit:     ing.Unit,
			Required: qty.Mul(demand.Ratio),
		}

		item := matcher.FindForIngredient(p.items, out.Name)
		if item == nil {
			out.Status = domain.StatusMissing
			out.Shortage = out.Required
			outcomes = append(outcomes, out)
			continue
		}

		out.Item = item
		out.Available = p.remaining[item.ID]
		out.Status, out.Shortage = classify(out.Required, out.Available)

		left := quantize(out.Available.Sub(out.Required))
		if !left.IsPositive() {
			left = decimal.Zero
			depleted := time.Time{}
			item.ConsumedAt = &depleted
		}
		p.remaining[item.ID] = left
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func classify(required, available decimal.Decimal) (string, decimal.Decimal) {
	switch {
	case !available.IsPositive():
		return domain.StatusMissing, required
	case available.GreaterThanOrEqual(required):
		return domain.StatusAvailable, decimal.Zero
	default:
		return domain.StatusPartial, required.Sub(available)
	}
}

// Check computes outcomes for every demand against one copy of the owner's
// stock. Nothing is written.
func (d *Deductor) Check(ctx context.Context, userID string, demands []Demand) ([][]Outcome, error) {
	stock, err := d.store.GetActiveStockItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}

	p := newPass(stock)
	results := make([][]Outcome, 0, len(demands))
	for _, demand := range demands {
		results = append(results, p.apply(demand))
	}
	return results, nil
}

// Commit computes the demand against fresh stock and writes each deduction.
// A write that fails is reported and does not undo earlier writes.
func (d *Deductor) Commit(ctx context.Context, userID string, demand Demand) (CommitResult, error) {
	res := CommitResult{Deducted: []string{}, NotFound: []string{}}

	stock, err := d.store.GetActiveStockItems(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("load stock: %w", err)
	}

	outcomes := newPass(stock).apply(demand)

	latest := make(map[uuid.UUID]*entities.StockItem)
	for _, item := range stock {
		latest[item.ID] = item
	}

	for i := range outcomes {
		out := &outcomes[i]
		if out.Item == nil {
			res.NotFound = append(res.NotFound, out.Name)
			metrics.DeductedIngredients.WithLabelValues(domain.StatusMissing).Inc()
			continue
		}

		err := d.persist(ctx, userID, out, latest)
		switch {
		case err == nil && out.Status == domain.StatusMissing:
			res.NotFound = append(res.NotFound, out.Name)
		case err == nil:
			res.Deducted = append(res.Deducted, out.Name)
		case errors.Is(err, domain.ErrNotFound):
			out.Status, out.Available, out.Shortage = domain.StatusMissing, decimal.Zero, out.Required
			res.NotFound = append(res.NotFound, out.Name)
		default:
			d.logger.Error("failed to deduct ingredient",
				zap.String("ingredient", out.Name),
				zap.String("item_id", out.Item.ID.String()),
				zap.Error(err),
			)
			res.Errors = append(res.Errors, domain.ItemError{Name: out.Name, Error: err.Error()})
		}
		metrics.DeductedIngredients.WithLabelValues(out.Status).Inc()
	}

	res.Outcomes = outcomes
	return res, nil
}

// persist writes one deduction. On a version conflict the item is read again
// and the deduction recomputed from its current quantity.
func (d *Deductor) persist(ctx context.Context, userID string, out *Outcome, latest map[uuid.UUID]*entities.StockItem) error {
	item := latest[out.Item.ID]

	var err error
	for attempt := 1; ; attempt++ {
		available := quantize(decimal.NewFromFloat(item.Quantity))
		out.Status, out.Shortage = classify(out.Required, available)
		out.Available = available
		if out.Status == domain.StatusMissing {
			return nil
		}

		next := *item
		left := quantize(available.Sub(out.Required))
		if left.IsPositive() {
			next.Quantity = left.InexactFloat64()
			err = d.store.UpdateStockItem(ctx, &next)
		} else {
			err = d.store.ConsumeStockItem(ctx, &next, domain.ReasonConsumed, d.now())
		}
		if err == nil {
			latest[next.ID] = &next
			return nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}

		metrics.VersionConflicts.Inc()
		if attempt >= maxCommitAttempts {
			return err
		}
		d.logger.Debug("stock item changed, retrying deduction",
			zap.String("item_id", item.ID.String()),
			zap.Int("attempt", attempt),
		)

		fresh, rerr := d.store.GetStockItemByID(ctx, userID, item.ID.String())
		if rerr != nil {
			return rerr
		}
		item = fresh
	}
}
