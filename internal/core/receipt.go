package core

import (
	"strings"
	"time"
)

// DefaultCurrency is assumed when the extraction result carries no currency code.
const DefaultCurrency = "USD"

type (
	// LineItem is one purchased product entry. Price is the net price: any
	// itemized discount has already been subtracted upstream, it is never
	// re-derived here. Count is 1 for a raw line and only grows through
	// aggregation.
	LineItem struct {
		Name  string
		Price float64
		Count int
	}

	// Receipt is the persisted record of one processed receipt. ID and
	// CreatedAt are assigned by the store; TotalAmount is derived from the
	// item prices at save time. A receipt is immutable once created.
	Receipt struct {
		ID          int64
		Merchant    string
		Address     string
		Date        string // ISO 8601 calendar date, empty when unknown
		Currency    string
		TotalAmount float64
		CreatedAt   time.Time
	}

	// AggregatedItem merges line items sharing an identical name within one
	// receipt. Derived and ephemeral, never persisted.
	AggregatedItem struct {
		Name  string
		Price float64
		Count int
	}

	// ChartDataset is the chart-ready projection of a receipt's items.
	// Labels[i] describes Sizes[i]; both are at most TopN+1 long.
	ChartDataset struct {
		Sizes  []float64
		Labels []string
	}
)

// NewLineItem builds a raw line item. One raw line is one item.
func NewLineItem(name string, price float64) LineItem {
	return LineItem{Name: name, Price: price, Count: 1}
}

// Total sums the prices of the given items.
func Total(items []LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price
	}
	return total
}

// NormalizedCurrency returns the receipt's currency code, falling back to
// DefaultCurrency when empty. The original casing is preserved; only symbol
// lookup is case-insensitive.
func (r Receipt) NormalizedCurrency() string {
	if strings.TrimSpace(r.Currency) == "" {
		return DefaultCurrency
	}
	return r.Currency
}
