package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"scontrini/internal/log"
	"scontrini/internal/services"
)

type fakeSummarizer struct {
	result *services.Result
	err    error
	called bool
}

func (f *fakeSummarizer) Summarize(ctx context.Context, image []byte, contentType string) (*services.Result, error) {
	f.called = true
	return f.result, f.err
}

func newTestServer(t *testing.T, s ReceiptSummarizer) *httptest.Server {
	t.Helper()
	srv := NewServer(":0", s, log.New(log.DefaultConfig()))
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func uploadImage(t *testing.T, url, filename string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("fake image bytes"))
	mw.Close()

	resp, err := http.Post(url+"/api/receipts", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAnalyzeReceiptOK(t *testing.T) {
	fake := &fakeSummarizer{result: &services.Result{
		ReceiptID: 3,
		Summary:   "Found 2 items. Total: $6.00",
		Chart:     []byte{0x89, 'P', 'N', 'G'},
	}}
	ts := newTestServer(t, fake)

	resp := uploadImage(t, ts.URL, "receipt.jpg")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ReceiptID != 3 || got.Summary != "Found 2 items. Total: $6.00" {
		t.Errorf("unexpected response: %+v", got)
	}
	if got.ChartPNG == "" {
		t.Error("expected chart in response")
	}
}

func TestAnalyzeReceiptNoChart(t *testing.T) {
	fake := &fakeSummarizer{result: &services.Result{ReceiptID: 1, Summary: "Found 1 items. Total: $1.00"}}
	ts := newTestServer(t, fake)

	resp := uploadImage(t, ts.URL, "receipt.png")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ChartPNG != "" {
		t.Error("chart must be omitted when rendering failed")
	}
}

func TestAnalyzeReceiptRejectsBadExtension(t *testing.T) {
	fake := &fakeSummarizer{}
	ts := newTestServer(t, fake)

	resp := uploadImage(t, ts.URL, "receipt.pdf")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if fake.called {
		t.Error("pipeline must not run for rejected uploads")
	}
}

func TestAnalyzeReceiptErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no items", services.ErrNoItems, http.StatusUnprocessableEntity},
		{"extraction", services.ErrExtraction, http.StatusBadGateway},
		{"persistence", services.ErrPersistence, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, &fakeSummarizer{err: tc.err})
			resp := uploadImage(t, ts.URL, "receipt.jpg")
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			var got errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestAnalyzeReceiptMissingFile(t *testing.T) {
	ts := newTestServer(t, &fakeSummarizer{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("note", "no file here")
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/receipts", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &fakeSummarizer{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
