package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStatusFor(t *testing.T) {
	product := Product{ReorderLevel: 10}

	cases := []struct {
		name    string
		balance int
		want    StockStatus
	}{
		{"zero balance is out", 0, StockStatusOut},
		{"negative balance is out", -3, StockStatusOut},
		{"balance below reorder level is low", 5, StockStatusLow},
		{"balance at reorder level is low", 10, StockStatusLow},
		{"balance above reorder level is ok", 11, StockStatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := product.StatusFor(tc.balance); got != tc.want {
				t.Errorf("StatusFor(%d) = %q, want %q", tc.balance, got, tc.want)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	cases := []struct {
		status StockStatus
		want   string
	}{
		{StockStatusOut, "Out of Stock"},
		{StockStatusLow, "Low Stock"},
		{StockStatusOK, "In Stock"},
	}

	for _, tc := range cases {
		if got := StatusLabel(tc.status); got != tc.want {
			t.Errorf("StatusLabel(%q) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestSuggestedReorderQuantity(t *testing.T) {
	product := Product{ReorderLevel: 10}

	// Widget at balance 5 should be topped up to double the reorder level
	if got := product.SuggestedReorderQuantity(5); got != 15 {
		t.Errorf("SuggestedReorderQuantity(5) = %d, want 15", got)
	}

	if got := product.SuggestedReorderQuantity(0); got != 20 {
		t.Errorf("SuggestedReorderQuantity(0) = %d, want 20", got)
	}

	// Negative balances order the full double allotment, not more
	if got := product.SuggestedReorderQuantity(-4); got != 20 {
		t.Errorf("SuggestedReorderQuantity(-4) = %d, want 20", got)
	}
}

func TestValuation(t *testing.T) {
	product := Product{UnitPrice: decimal.RequireFromString("2.50")}

	if got := product.Valuation(4); !got.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("Valuation(4) = %s, want 10.00", got)
	}

	if got := product.Valuation(0); !got.IsZero() {
		t.Errorf("Valuation(0) = %s, want 0", got)
	}

	if got := product.Valuation(-2); !got.Equal(decimal.RequireFromString("-5.00")) {
		t.Errorf("Valuation(-2) = %s, want -5.00", got)
	}
}
