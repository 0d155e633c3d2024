package recipe

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"Pantry-Service/domain"
	"Pantry-Service/entities"
	"Pantry-Service/pkg/matcher"
)

// fakeStock is an in-memory StockStore with optimistic versioning.
// bumpOn lists item names whose next N writes lose their version check
// because another writer got there first.
type fakeStock struct {
	mu     sync.Mutex
	items  map[uuid.UUID]entities.StockItem
	bumpOn map[string]int
	clock  time.Time
}

func newFakeStock() *fakeStock {
	return &fakeStock{
		items:  make(map[uuid.UUID]entities.StockItem),
		bumpOn: make(map[string]int),
		clock:  time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStock) seed(owner uuid.UUID, name string, qty float64) *entities.StockItem {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clock = f.clock.Add(time.Minute)
	item := entities.StockItem{
		ID:             uuid.New(),
		UserID:         owner,
		Name:           name,
		NormalizedName: matcher.NormalizeName(name),
		Location:       domain.LocationFridge,
		Quantity:       qty,
		Version:        1,
	}
	item.CreatedAt = f.clock
	f.items[item.ID] = item
	return &item
}

func (f *fakeStock) get(id uuid.UUID) entities.StockItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id]
}

func (f *fakeStock) GetActiveStockItems(_ context.Context, userID string) ([]*entities.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entities.StockItem
	for _, item := range f.items {
		if item.UserID.String() != userID || item.ConsumedAt != nil {
			continue
		}
		it := item
		out = append(out, &it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStock) GetStockItemByID(_ context.Context, userID, id string) (*entities.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	item, ok := f.items[uid]
	if !ok || item.UserID.String() != userID || item.ConsumedAt != nil {
		return nil, domain.ErrStockItemNotFound
	}
	return &item, nil
}

// collide simulates a concurrent writer for name: it changes the stored
// quantity, bumps the version and reports whether the caller lost.
func (f *fakeStock) collide(item *entities.StockItem) bool {
	n := f.bumpOn[item.Name]
	if n == 0 {
		return false
	}
	f.bumpOn[item.Name] = n - 1
	stored := f.items[item.ID]
	stored.Quantity--
	stored.Version++
	f.items[item.ID] = stored
	return true
}

func (f *fakeStock) UpdateStockItem(_ context.Context, item *entities.StockItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.collide(item) {
		return domain.ErrVersionConflict
	}
	stored, ok := f.items[item.ID]
	if !ok || stored.Version != item.Version || stored.ConsumedAt != nil {
		return domain.ErrVersionConflict
	}
	item.Version++
	f.items[item.ID] = *item
	return nil
}

func (f *fakeStock) ConsumeStockItem(_ context.Context, item *entities.StockItem, reason string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.collide(item) {
		return domain.ErrVersionConflict
	}
	stored, ok := f.items[item.ID]
	if !ok || stored.Version != item.Version || stored.ConsumedAt != nil {
		return domain.ErrVersionConflict
	}
	item.Version++
	item.Quantity = 0
	item.ConsumedAt = &at
	item.ConsumedReason = reason
	f.items[item.ID] = *item
	return nil
}

// remove deletes a row behind the deductor's back.
func (f *fakeStock) remove(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
}
