package extraction

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI implements Extractor against any OpenAI-compatible vision endpoint
// (OpenAI itself, or a self-hosted gateway exposing the same API).
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI creates an extractor for the given endpoint. baseURL may be
// empty to use the public OpenAI API.
func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}, nil
}

// Extract sends the receipt image as a data URL and parses the JSON response.
func (o *OpenAI) Extract(ctx context.Context, image []byte, contentType string) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if contentType == "" {
		contentType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: receiptPrompt,
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	doc, err := parseDocumentJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return doc, nil
}

// Close is a no-op, the underlying client holds no persistent resources.
func (o *OpenAI) Close() error {
	return nil
}
