package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"scontrini/internal/core"
)

// unknownDateSentinel is what some model responses put in the date field
// when the receipt carries no readable date.
const unknownDateSentinel = "unknown date"

// fallbackDateFormats are tried when the date is not already ISO 8601.
var fallbackDateFormats = []string{
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// parseDocumentJSON parses the model's text response into a Document. Model
// output is frequently wrapped in markdown fences or surrounded by prose, so
// the JSON object is sliced out between the first '{' and the last '}'.
func parseDocumentJSON(text string) (*Document, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[start : end+1]

	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}

	doc.Merchant = strings.TrimSpace(doc.Merchant)
	doc.Address = strings.TrimSpace(doc.Address)
	doc.Currency = strings.TrimSpace(doc.Currency)
	doc.Date = normalizeDate(doc.Date)

	return &doc, nil
}

// normalizeDate returns an ISO 8601 calendar date, or empty when the input
// is missing, a sentinel, or unparsable. Unknown dates stay empty here: the
// orchestrator substitutes the processing date for the chart title only and
// never persists a made-up date.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ToLower(raw) == unknownDateSentinel {
		return ""
	}
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		return d.Format("2006-01-02")
	}
	for _, format := range fallbackDateFormats {
		if d, err := time.Parse(format, raw); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return ""
}

// Coerce validates the untyped document and converts it into the typed
// receipt shape. Missing merchant and currency get their defaults; every
// raw line becomes one LineItem with count 1.
func (d *Document) Coerce() (core.Receipt, []core.LineItem) {
	merchant := d.Merchant
	if merchant == "" {
		merchant = "Unknown"
	}
	currency := d.Currency
	if currency == "" {
		currency = core.DefaultCurrency
	}

	items := make([]core.LineItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, core.NewLineItem(item.Name, item.Price))
	}

	return core.Receipt{
		Merchant: merchant,
		Address:  d.Address,
		Date:     d.Date,
		Currency: currency,
	}, items
}
