package stock

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"Pantry-Service/domain"
	"Pantry-Service/entities"
	"Pantry-Service/pkg/matcher"
)

var errStorage = errors.New("storage unavailable")

// fakeStore keeps stock rows in memory with the same version semantics as
// the gorm repository. failOn makes every write touching a name fail.
type fakeStore struct {
	mu     sync.Mutex
	items  map[uuid.UUID]entities.StockItem
	failOn map[string]bool
	clock  time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:  make(map[uuid.UUID]entities.StockItem),
		failOn: make(map[string]bool),
		clock:  time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) seed(owner uuid.UUID, name, location string, qty float64) *entities.StockItem {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clock = f.clock.Add(time.Minute)
	item := entities.StockItem{
		ID:             uuid.New(),
		UserID:         owner,
		Name:           name,
		NormalizedName: matcher.NormalizeName(name),
		Location:       location,
		Quantity:       qty,
		Freshness:      domain.FreshnessFresh,
		Version:        1,
	}
	item.CreatedAt = f.clock
	f.items[item.ID] = item
	return &item
}

func (f *fakeStore) GetActiveStockItems(_ context.Context, userID string) ([]*entities.StockItem, error) {
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

func (f *fakeStore) CreateStockItem(_ context.Context, item *entities.StockItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn[item.Name] {
		return errStorage
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeStore) UpdateStockItem(_ context.Context, item *entities.StockItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn[item.Name] {
		return errStorage
	}
	stored, ok := f.items[item.ID]
	if !ok || stored.Version != item.Version || stored.ConsumedAt != nil {
		return domain.ErrVersionConflict
	}
	item.Version++
	f.items[item.ID] = *item
	return nil
}

func (f *fakeStore) DeleteStockItem(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrParseUUID
	}
	stored, ok := f.items[uid]
	if !ok || stored.UserID.String() != userID {
		return domain.ErrStockItemNotFound
	}
	if f.failOn[stored.Name] {
		return errStorage
	}
	delete(f.items, uid)
	return nil
}

// state returns name -> quantity of the owner's active rows at location.
func (f *fakeStore) state(owner uuid.UUID, location string) map[string]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]float64)
	for _, item := range f.items {
		if item.UserID == owner && item.Location == location && item.ConsumedAt == nil {
			out[item.NormalizedName] += item.Quantity
		}
	}
	return out
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
