// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pdiddy/medaffairs/internal/httputil"
)

const geminiService = "gemini"

// GeminiBackend calls the Gemini API through the genai SDK.
type GeminiBackend struct {
	client *genai.Client
}

// NewGeminiBackend creates a genai client authenticated with apiKey.
func NewGeminiBackend(ctx context.Context, apiKey string) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &httputil.NetworkError{Service: geminiService, Err: err}
	}
	return &GeminiBackend{client: client}, nil
}

// Close releases the underlying SDK client.
func (b *GeminiBackend) Close() error {
	return b.client.Close()
}

// Complete sends one single-turn prompt and concatenates the text parts of
// the first candidate.
func (b *GeminiBackend) Complete(ctx context.Context, req Request) (string, error) {
	model := b.client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", &httputil.UpstreamError{Service: geminiService, Msg: err.Error()}
	}
	return responseText(resp)
}

// responseText maps a generate response to its text, or an UpstreamError
// when no candidate carries text.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	text := candidateText(resp)
	if text == "" {
		return "", &httputil.UpstreamError{Service: geminiService, Msg: "response has no text content"}
	}
	return text, nil
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
