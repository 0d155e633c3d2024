package recipe

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw  any
		want string
		ok   bool
	}{
		{2.0, "2", true},
		{float32(0.5), "0.5", true},
		{3, "3", true},
		{int64(7), "7", true},
		{json.Number("1.25"), "1.25", true},
		{"2", "2", true},
		{" 1.5 ", "1.5", true},
		{"1/2", "0.5", true},
		{"1 1/2", "1.5", true},
		{"3 / 4 cup", "0.75", true},
		{"200g", "200", true},
		{".5", "0.5", true},
		{"a pinch", "1", false},
		{"1/0", "1", false},
		{"", "1", false},
		{0.0, "1", false},
		{-2, "1", false},
		{nil, "1", false},
		{true, "1", false},
	}

	for _, tt := range tests {
		got, ok := ParseQuantity(tt.raw)
		assert.Equal(t, tt.want, got.String(), "raw=%#v", tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%#v", tt.raw)
	}
}

func TestServingsRatio(t *testing.T) {
	assert.Equal(t, "0.5", ServingsRatio(2, 4).String())
	assert.Equal(t, "3", ServingsRatio(6, 2).String())
	assert.Equal(t, "1", ServingsRatio(0, 4).String())
	assert.Equal(t, "1", ServingsRatio(2, 0).String())
	assert.Equal(t, "1", ServingsRatio(-1, 4).String())
}

func TestRound1(t *testing.T) {
	third := decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
	assert.Equal(t, 0.3, round1(third))
	assert.Equal(t, 0.7, round1(decimal.RequireFromString("0.65")))
	assert.Equal(t, 2.0, round1(decimal.NewFromInt(2)))
}
