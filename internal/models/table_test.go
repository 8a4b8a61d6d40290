package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Product ID", "product id"},
		{"  COST  ", "cost"},
		{"Gross\trevenue", "gross revenue"},
		{"\ufeffProduct ID", "product id"},
		{"\uff33\uff2b\uff35\u3000Orders", "sku orders"}, // full-width letters and space
		{"product id", "product id"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeColumn(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeColumn(got), "normalization must be idempotent")
		})
	}
}

func TestTableNormalizeOnce(t *testing.T) {
	raw := NewTable("cost.xlsx", []string{" Product ID", "COST "}, [][]any{{"A1", "100"}})
	n := raw.Normalize()

	assert.True(t, n.Normalized())
	assert.False(t, raw.Normalized())
	assert.Equal(t, []string{"product id", "cost"}, n.Columns)
	assert.Equal(t, []string{" Product ID", "COST "}, raw.Columns, "input table must not change")
	assert.Same(t, n, n.Normalize())
}

func TestTableCellShortRows(t *testing.T) {
	tb := NewTable("t", []string{"a", "b", "c"}, [][]any{{"1"}})
	assert.Equal(t, "1", tb.Value(0, "a"))
	assert.Nil(t, tb.Value(0, "c"))
	assert.Nil(t, tb.Value(0, "missing"))
	assert.Nil(t, tb.Cell(5, 0))
}

func TestIndexFirstDuplicateWins(t *testing.T) {
	tb := NewTable("t", []string{"cost", "clicks", "cost"}, nil)
	assert.Equal(t, 0, tb.Index("cost"))
	assert.Equal(t, -1, tb.Index("orders"))
}

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"trimmed string", "  A1 ", "A1"},
		{"float integral", float64(1001), "1001"},
		{"int", 1001, "1001"},
		{"int64", int64(1729384123), "1729384123"},
		{"string with zero fraction", "1001.0", "1001"},
		{"string with real fraction", "1001.5", "1001.5"},
		{"alphanumeric with dot", "A1.0", "A1.0"},
		{"float fraction", 12.25, "12.25"},
		{"NaN", math.NaN(), ""},
		{"scientific notation", "1.0E+3", "1000"},
		{"large scientific notation", "1.72938475612345E+18", "1729384756123450000"},
		{"scientific without fraction", "2E+3", "2000"},
		{"code that looks like exponent", "12E4", "12E4"},
		{"leading zeros kept", "0012", "0012"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalID(tt.in))
		})
	}
	assert.Equal(t, IDKey("sku-9"), IDKey(" SKU-9 "))
	assert.Equal(t, CanonicalID(1729384756123450000.0), CanonicalID("1.72938475612345E+18"))
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 12.5, 12.5},
		{"int", 7, 7},
		{"string", " 42.5 ", 42.5},
		{"text", "n/a", 0},
		{"empty", "", 0},
		{"inf", math.Inf(1), 0},
		{"bool", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.in))
		})
	}
}

func TestMissingColumnsError(t *testing.T) {
	err := error(&MissingColumnsError{
		Table:   "perf.xlsx",
		Roles:   []Role{RoleClicks, RoleOrders},
		Columns: []string{"product id", "impressions"},
	})
	require.True(t, errors.Is(err, ErrMissingRequiredColumn))
	assert.Contains(t, err.Error(), "perf.xlsx")
	assert.Contains(t, err.Error(), "clicks, orders")
	assert.Contains(t, err.Error(), "product id, impressions")

	var mc *MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Len(t, mc.Roles, 2)
}

func TestMalformed(t *testing.T) {
	err := Malformed("bad.xlsx", errors.New("zip: not a valid zip file"))
	assert.True(t, errors.Is(err, ErrMalformedInput))
	assert.Contains(t, err.Error(), "zip: not a valid zip file")
}
