// Package services sequences one receipt through extraction, validation,
// persistence, aggregation and rendering.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scontrini/internal/core"
	"scontrini/internal/extraction"
)

var (
	// ErrExtraction marks failures of the external vision model, including
	// timeouts and unparsable output.
	ErrExtraction = errors.New("extraction failed")
	// ErrNoItems marks an extraction that succeeded but identified nothing.
	ErrNoItems = errors.New("no items identified")
	// ErrPersistence marks a failed store transaction. Nothing was written.
	ErrPersistence = errors.New("persistence failed")
)

// ReceiptStore persists a receipt with its items and returns the new id.
type ReceiptStore interface {
	SaveReceipt(ctx context.Context, receipt core.Receipt, items []core.LineItem) (int64, error)
}

// Renderer turns a chart dataset into an image.
type Renderer interface {
	RenderPie(dataset core.ChartDataset, title string) ([]byte, error)
}

// EventPublisher announces persisted receipts to downstream consumers.
type EventPublisher interface {
	PublishReceiptSaved(ctx context.Context, receiptID int64, itemCount int, totalAmount float64, currency string) error
}

// Summarizer is the pipeline orchestrator. One receipt per invocation; no
// internal parallelism. Invocations are independent except through the
// shared store.
type Summarizer struct {
	extractor extraction.Extractor
	store     ReceiptStore
	renderer  Renderer
	publisher EventPublisher // optional
	topN      int
	now       func() time.Time
}

// Result is what the caller gets back for one processed receipt. Chart is
// nil when rendering failed; the summary is still valid then.
type Result struct {
	ReceiptID int64
	Summary   string
	Chart     []byte
}

func NewSummarizer(extractor extraction.Extractor, store ReceiptStore, renderer Renderer, publisher EventPublisher, topN int) *Summarizer {
	if topN <= 0 {
		topN = core.DefaultTopN
	}
	return &Summarizer{
		extractor: extractor,
		store:     store,
		renderer:  renderer,
		publisher: publisher,
		topN:      topN,
		now:       time.Now,
	}
}

// Summarize runs the whole pipeline for one receipt image: extract,
// validate, persist, aggregate, render. Persistence happens before
// aggregation and rendering so the summary reflects exactly what was saved.
func (s *Summarizer) Summarize(ctx context.Context, image []byte, contentType string) (*Result, error) {
	doc, err := s.extractor.Extract(ctx, image, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if doc == nil || len(doc.Items) == 0 {
		return nil, ErrNoItems
	}

	receipt, items := doc.Coerce()

	id, err := s.store.SaveReceipt(ctx, receipt, items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	currency := receipt.Currency
	result := &Result{
		ReceiptID: id,
		Summary:   core.SummaryLine(items, currency),
	}

	dataset := core.BuildChartDataset(items, currency, s.topN)
	title := fmt.Sprintf("%s Expense Breakdown - %s", receipt.Merchant, s.chartDate(receipt.Date))
	if png, err := s.renderer.RenderPie(dataset, title); err != nil {
		// Non-fatal: the receipt is saved, the summary stands on its own.
		slog.WarnContext(ctx, "Chart rendering failed",
			"receipt_id", id,
			"error", err)
	} else {
		result.Chart = png
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReceiptSaved(ctx, id, len(items), core.Total(items), currency); err != nil {
			slog.ErrorContext(ctx, "Failed to publish receipt saved event",
				"receipt_id", id,
				"error", err)
		}
	}

	return result, nil
}

// chartDate substitutes the processing date when the receipt has none. The
// substitute is for the chart title only and is never persisted.
func (s *Summarizer) chartDate(date string) string {
	if date == "" {
		return s.now().Format("2006-01-02")
	}
	return date
}
