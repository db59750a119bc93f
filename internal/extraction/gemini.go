package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini implements Extractor using Google Gemini vision models.
type Gemini struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewGemini creates a Gemini extractor.
func NewGemini(apiKey, modelName string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		client:  client,
		model:   client.GenerativeModel(modelName),
		timeout: timeout,
	}, nil
}

// Extract sends the receipt image to Gemini and parses the JSON response.
func (g *Gemini) Extract(ctx context.Context, image []byte, contentType string) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := []genai.Part{
		genai.ImageData(imageFormat(contentType), image),
		genai.Text(receiptPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	doc, err := parseDocumentJSON(text.String())
	if err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	return doc, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// imageFormat maps a MIME type to the bare format suffix genai expects,
// e.g. "image/png" -> "png".
func imageFormat(contentType string) string {
	format := strings.TrimPrefix(strings.ToLower(contentType), "image/")
	switch format {
	case "png", "jpeg", "webp":
		return format
	case "jpg":
		return "jpeg"
	default:
		return "jpeg"
	}
}
