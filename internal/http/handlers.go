package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"scontrini/internal/log"
	"scontrini/internal/services"
)

// maxUploadBytes caps receipt photo uploads.
const maxUploadBytes = 10 << 20

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type handler struct {
	summarizer ReceiptSummarizer
	log        *log.Logger
}

type analyzeResponse struct {
	ReceiptID int64  `json:"receipt_id"`
	Summary   string `json:"summary"`
	ChartPNG  string `json:"chart_png,omitempty"` // base64
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleAnalyzeReceipt accepts a multipart form with an "image" file,
// runs the pipeline and returns the summary plus the chart.
func (h *handler) handleAnalyzeReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "missing 'image' file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		h.writeError(w, http.StatusBadRequest, "please upload a valid image file (jpg, png, webp)")
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	result, err := h.summarizer.Summarize(r.Context(), image, contentType)
	if err != nil {
		h.respondPipelineError(w, r, err)
		return
	}

	resp := analyzeResponse{
		ReceiptID: result.ReceiptID,
		Summary:   result.Summary,
	}
	if result.Chart != nil {
		resp.ChartPNG = base64.StdEncoding.EncodeToString(result.Chart)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// respondPipelineError maps pipeline failures to status codes. Full detail
// goes to the log; the client gets a short diagnostic.
func (h *handler) respondPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrNoItems):
		h.log.InfoContext(ctx, "No items identified on receipt")
		h.writeError(w, http.StatusUnprocessableEntity,
			"could not identify items, please check the image")
	case errors.Is(err, services.ErrExtraction):
		h.log.ErrorContext(ctx, "Receipt extraction failed", "error", err)
		h.writeError(w, http.StatusBadGateway, "receipt extraction failed")
	case errors.Is(err, services.ErrPersistence):
		h.log.ErrorContext(ctx, "Receipt persistence failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to save receipt")
	default:
		h.log.ErrorContext(ctx, "Receipt processing failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "error processing receipt")
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
