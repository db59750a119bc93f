package core

import "testing"

func TestSummaryLine(t *testing.T) {
	cases := []struct {
		name     string
		items    []LineItem
		currency string
		want     string
	}{
		{
			name: "usd",
			items: []LineItem{
				NewLineItem("Milk", 3.99),
				NewLineItem("Bread", 2.01),
			},
			currency: "USD",
			want:     "Found 2 items. Total: $6.00",
		},
		{
			// The summary keeps two decimals even for zero-decimal
			// currencies; only chart labels drop them.
			name: "jpy keeps two decimals",
			items: []LineItem{
				NewLineItem("Sushi Set", 1500),
				NewLineItem("Green Tea", 150),
				NewLineItem("Mochi", 300),
			},
			currency: "JPY",
			want:     "Found 3 items. Total: ¥1950.00",
		},
		{
			name:     "unknown currency",
			items:    []LineItem{NewLineItem("Thing", 5)},
			currency: "XYZ",
			want:     "Found 1 items. Total: XYZ 5.00",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SummaryLine(tc.items, tc.currency); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizedCurrency(t *testing.T) {
	if got := (Receipt{Currency: "jpy"}).NormalizedCurrency(); got != "jpy" {
		t.Errorf("expected original casing preserved, got %q", got)
	}
	if got := (Receipt{}).NormalizedCurrency(); got != DefaultCurrency {
		t.Errorf("expected default currency, got %q", got)
	}
	if got := (Receipt{Currency: "  "}).NormalizedCurrency(); got != DefaultCurrency {
		t.Errorf("expected default for blank currency, got %q", got)
	}
}
