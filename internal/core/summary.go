package core

import "fmt"

// SummaryLine derives the human-readable summary of a processed receipt.
// Item count and total come from the raw, pre-aggregation item list.
//
// The total is always formatted with two decimals regardless of currency,
// while chart labels use FormatAmount's zero-decimal policy for JPY/KRW.
// That mismatch is kept for parity with the historical summary text.
func SummaryLine(items []LineItem, currency string) string {
	return fmt.Sprintf("Found %d items. Total: %s%.2f",
		len(items), CurrencySymbol(currency), Total(items))
}
