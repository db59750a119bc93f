// Package http exposes the receipt pipeline over a small JSON API. It is a
// thin conduit: all policy lives in the services and core packages.
package http

import (
	"context"
	"net/http"
	"time"

	"scontrini/internal/log"
	"scontrini/internal/services"
)

// ReceiptSummarizer is the slice of the pipeline the handlers need.
type ReceiptSummarizer interface {
	Summarize(ctx context.Context, image []byte, contentType string) (*services.Result, error)
}

// NewServer builds the HTTP server with timeouts configured. Shutdown is the
// caller's responsibility.
func NewServer(addr string, summarizer ReceiptSummarizer, logger *log.Logger) *http.Server {
	h := &handler{
		summarizer: summarizer,
		log:        logger.WithComponent("http"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/receipts", h.handleAnalyzeReceipt)
	mux.HandleFunc("GET /healthz", h.handleHealth)

	return &http.Server{
		Addr:           addr,
		Handler:        withRequestLogging(h.log, mux),
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}
