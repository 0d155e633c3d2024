// Package matcher decides whether an incoming item name refers to an existing
// stock item. Two strictness levels exist: merge matching (same normalized
// name at the same location) used when stock is written, and ingredient
// matching (substring in either direction, any location) used when recipe
// ingredients are checked against stock.
package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"Pantry-Service/entities"
)

// Strategy reports whether a stock item is a candidate for a name at a location.
type Strategy func(item *entities.StockItem, normalizedName, location string) bool

// NormalizeName lowercases and trims name, then folds a plural suffix:
// "ies" becomes "y", otherwise one trailing "s" is dropped. Words ending in
// "ss" are kept as they are, and so is a suffix that stands alone as the
// last word ("apple s"), so that NormalizeName(NormalizeName(x)) equals
// NormalizeName(x).
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.HasSuffix(n, "ies"):
		if stem := strings.TrimSuffix(n, "ies"); endsWord(stem) {
			return stem + "y"
		}
	case strings.HasSuffix(n, "ss"):
	case strings.HasSuffix(n, "s"):
		if stem := strings.TrimSuffix(n, "s"); endsWord(stem) {
			return stem
		}
	}
	return n
}

// endsWord reports whether stripping a suffix down to stem leaves no
// trailing whitespace behind.
func endsWord(stem string) bool {
	if stem == "" {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(stem)
	return !unicode.IsSpace(r)
}

// ExactLocation matches when the normalized names are equal and the item sits
// at the requested location.
func ExactLocation(item *entities.StockItem, normalizedName, location string) bool {
	if normalizedName == "" {
		return false
	}
	return itemKey(item) == normalizedName && item.Location == location
}

// Substring matches when either normalized name contains the other. Location
// is ignored.
func Substring(item *entities.StockItem, normalizedName, _ string) bool {
	key := itemKey(item)
	if normalizedName == "" || key == "" {
		return false
	}
	return strings.Contains(key, normalizedName) || strings.Contains(normalizedName, key)
}

// Find returns the candidate accepted by strategy, or nil. Consumed items are
// never candidates. When several items qualify the earliest created wins and
// ties on CreatedAt fall back to the smaller ID, so the result does not depend
// on the order of items.
func Find(items []*entities.StockItem, name, location string, strategy Strategy) *entities.StockItem {
	normalized := NormalizeName(name)

	var best *entities.StockItem
	for _, item := range items {
		if item == nil || item.ConsumedAt != nil {
			continue
		}
		if !strategy(item, normalized, location) {
			continue
		}
		if best == nil || earlier(item, best) {
			best = item
		}
	}
	return best
}

// FindForMerge is the lookup used when writing stock.
func FindForMerge(items []*entities.StockItem, name, location string) *entities.StockItem {
	return Find(items, name, location, ExactLocation)
}

// FindForIngredient is the lookup used when checking recipe ingredients.
func FindForIngredient(items []*entities.StockItem, name string) *entities.StockItem {
	return Find(items, name, "", Substring)
}

func itemKey(item *entities.StockItem) string {
	if item.NormalizedName != "" {
		return item.NormalizedName
	}
	return NormalizeName(item.Name)
}

func earlier(a, b *entities.StockItem) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}
