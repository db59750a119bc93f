// Package extraction calls an external vision model to turn a receipt photo
// into a structured document, then coerces that loosely-typed payload into
// the core types before it enters the pipeline.
package extraction

import "context"

// Document is the untyped boundary shape returned by the vision model. It
// must not leak past Coerce.
type Document struct {
	Merchant string         `json:"merchant"`
	Address  string         `json:"address"`
	Date     string         `json:"date"`
	Currency string         `json:"currency"`
	Items    []DocumentItem `json:"items"`
}

// DocumentItem is one extracted purchase line.
type DocumentItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Extractor analyzes a receipt image and extracts structured purchase data.
type Extractor interface {
	Extract(ctx context.Context, image []byte, contentType string) (*Document, error)
	Close() error
}

const receiptPrompt = `You are an expert receipt parser. Analyze this receipt image.
1. Extract the Merchant Name.
2. Extract the Date of purchase (format: YYYY-MM-DD). If not found, look for date-like strings.
3. Extract the Store Address.
4. Extract the 3-letter currency code (e.g. USD, EUR, JPY). Infer it from the symbols and language on the receipt.
5. Extract a list of all purchased items.
   - Name: Clean up the name (remove codes like 123456, remove tax flags like 'A' or 'Tax').
   - Price: Must be the NET price.
     * IMPORTANT: If there is a discount line below an item (e.g. "Instant Savings", "Coupon", "-4.00"), SUBTRACT it from the item's price.
     * Example: Item $19.99 followed by Discount -$4.00 -> Price should be $15.99.
6. Return strictly a JSON object. No markdown formatting.

Schema:
{
  "merchant": "string",
  "address": "string",
  "date": "YYYY-MM-DD",
  "currency": "string",
  "items": [
    {"name": "string", "price": number}
  ]
}`
