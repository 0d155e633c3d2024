package recipe

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	mixedFraction = regexp.MustCompile(`^(\d+)\s+(\d+)\s*/\s*(\d+)`)
	fraction      = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)`)
	leadingNumber = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)`)
)

// ParseQuantity reads an ingredient quantity given as a number or as text
// such as "2", "1.5", "1/2", "1 1/2" or "200g". Anything it cannot read, and
// any value that is not positive, comes back as 1 with ok set to false.
func ParseQuantity(raw any) (qty decimal.Decimal, ok bool) {
	one := decimal.NewFromInt(1)

	switch v := raw.(type) {
	case float64:
		qty = decimal.NewFromFloat(v)
	case float32:
		qty = decimal.NewFromFloat32(v)
	case int:
		qty = decimal.NewFromInt(int64(v))
	case int64:
		qty = decimal.NewFromInt(v)
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return one, false
		}
		qty = d
	case string:
		d, parsed := parseQuantityText(v)
		if !parsed {
			return one, false
		}
		qty = d
	default:
		return one, false
	}

	if !qty.IsPositive() {
		return one, false
	}
	return qty, true
}

func parseQuantityText(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(text)

	if m := mixedFraction.FindStringSubmatch(s); m != nil {
		whole, _ := decimal.NewFromString(m[1])
		frac, ok := ratio(m[2], m[3])
		if !ok {
			return decimal.Zero, false
		}
		return whole.Add(frac), true
	}
	if m := fraction.FindStringSubmatch(s); m != nil {
		return ratio(m[1], m[2])
	}
	if m := leadingNumber.FindStringSubmatch(s); m != nil {
		d, err := decimal.NewFromString(m[1])
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

func ratio(num, den string) (decimal.Decimal, bool) {
	n, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(den)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}
	return n.Div(d), true
}

// ServingsRatio scales a recipe written for base servings to target
// servings. A non-positive side yields 1.
func ServingsRatio(target, base float64) decimal.Decimal {
	if target <= 0 || base <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(target).Div(decimal.NewFromFloat(base))
}

// round1 is the single place quantities are rounded for display.
func round1(d decimal.Decimal) float64 {
	return d.Round(1).InexactFloat64()
}

// storagePlaces is the precision stock quantities are kept at. Remainders
// are quantized to it before they are compared or written back.
const storagePlaces = 6

func quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(storagePlaces)
}
