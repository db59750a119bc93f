// Package core implements the receipt summarization pipeline: currency
// display formatting, line item aggregation, top-N selection and chart
// label building.
package core

import (
	"fmt"
	"math"
	"strings"
)

// currencySymbols maps ISO 4217 codes to their display symbol. Built once at
// init, read-only afterwards.
var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"KRW": "₩",
}

// zeroDecimalCurrencies are formatted without a fractional part.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
}

// CurrencySymbol returns the display symbol for a currency code. Unknown
// codes yield the code itself plus a trailing space as a pseudo-symbol, e.g.
// "XYZ ". Lookup is case-insensitive.
func CurrencySymbol(code string) string {
	if symbol, ok := currencySymbols[strings.ToUpper(code)]; ok {
		return symbol
	}
	return code + " "
}

// ZeroDecimal reports whether amounts in the given currency are displayed
// without decimal places.
func ZeroDecimal(code string) bool {
	return zeroDecimalCurrencies[strings.ToUpper(code)]
}

// FormatAmount renders an amount as symbol plus number. Zero-decimal
// currencies get the integer part only (truncated, not rounded); everything
// else gets exactly two decimals with standard rounding.
func FormatAmount(code string, amount float64) string {
	symbol := CurrencySymbol(code)
	if ZeroDecimal(code) {
		return fmt.Sprintf("%s%d", symbol, int64(math.Trunc(amount)))
	}
	return fmt.Sprintf("%s%.2f", symbol, amount)
}
