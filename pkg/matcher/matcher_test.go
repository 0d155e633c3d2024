package matcher

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Pantry-Service/entities"
)

func newItem(name, location string, created time.Time) *entities.StockItem {
	item := &entities.StockItem{
		ID:             uuid.New(),
		Name:           name,
		NormalizedName: NormalizeName(name),
		Location:       location,
		Quantity:       1,
	}
	item.CreatedAt = created
	return item
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Apples":     "apple",
		"  Berries ": "berry",
		"EGGS":       "egg",
		"glass":      "glass",
		"milk":       "milk",
		"tomatoes":   "tomatoe",
		"":           "",
		"s":          "",
		"apple s":    "apple s",
		"Kale ies":   "kale ies",
		"ies":        "y",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, NormalizeName(in))
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	for _, name := range []string{"Apples", "berries", "glass", "Swiss Cheese", "hummus", "tomatoes", "Cookies", "asparagus", "apple s", "bus s", "berry ies", "  Green Beans  ", "s", "ies"} {
		once := NormalizeName(name)
		assert.Equal(t, once, NormalizeName(once), name)
	}
}

func TestExactLocation(t *testing.T) {
	item := newItem("Apples", "fridge", time.Now())

	assert.True(t, ExactLocation(item, "apple", "fridge"))
	assert.False(t, ExactLocation(item, "apple", "pantry"))
	assert.False(t, ExactLocation(item, "green apple", "fridge"))
	assert.False(t, ExactLocation(item, "", "fridge"))
}

func TestSubstring(t *testing.T) {
	item := newItem("Cheddar Cheese", "fridge", time.Now())

	assert.True(t, Substring(item, "cheese", ""))
	assert.True(t, Substring(item, "aged cheddar cheese block", ""))
	assert.False(t, Substring(item, "milk", ""))
	assert.False(t, Substring(item, "", ""))

	empty := newItem("", "fridge", time.Now())
	assert.False(t, Substring(empty, "cheese", ""))
}

func TestFindForMergeTieBreak(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	older := newItem("apple", "fridge", base)
	newer := newItem("Apples", "fridge", base.Add(time.Hour))
	elsewhere := newItem("apple", "pantry", base.Add(-time.Hour))

	got := FindForMerge([]*entities.StockItem{newer, elsewhere, older}, "APPLES", "fridge")
	require.NotNil(t, got)
	assert.Equal(t, older.ID, got.ID)

	got = FindForMerge([]*entities.StockItem{older, elsewhere, newer}, "apple", "fridge")
	require.NotNil(t, got)
	assert.Equal(t, older.ID, got.ID)
}

func TestFindTieOnCreatedAtUsesID(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := newItem("egg", "fridge", at)
	b := newItem("egg", "fridge", at)
	a.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b.ID = uuid.MustParse("00000000-0000-0000-0000-000000000002")

	for i := 0; i < 5; i++ {
		assert.Equal(t, a.ID, FindForIngredient([]*entities.StockItem{b, a}, "eggs").ID)
		assert.Equal(t, a.ID, FindForIngredient([]*entities.StockItem{a, b}, "eggs").ID)
	}
}

func TestFindSkipsConsumed(t *testing.T) {
	consumedAt := time.Now()
	gone := newItem("milk", "fridge", time.Now().Add(-time.Hour))
	gone.ConsumedAt = &consumedAt
	live := newItem("milk", "fridge", time.Now())

	got := FindForMerge([]*entities.StockItem{gone, live}, "milk", "fridge")
	require.NotNil(t, got)
	assert.Equal(t, live.ID, got.ID)

	assert.Nil(t, FindForIngredient([]*entities.StockItem{gone}, "milk"))
}

func TestFindForIngredientIgnoresLocation(t *testing.T) {
	item := newItem("Chicken Breast", "freezer", time.Now())

	got := FindForIngredient([]*entities.StockItem{item}, "chicken")
	require.NotNil(t, got)
	assert.Equal(t, item.ID, got.ID)
	assert.Nil(t, FindForIngredient([]*entities.StockItem{item}, "beef"))
	assert.Nil(t, FindForIngredient([]*entities.StockItem{item, nil}, "  "))
}
