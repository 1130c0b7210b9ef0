// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/medaffairs/internal/httputil"
)

// DefaultMessagesURL is the root of the messages endpoint.
const DefaultMessagesURL = "https://api.anthropic.com"

const (
	messagesService = "generation API"
	apiVersion      = "2023-06-01"
)

// MessagesBackend calls a Messages-style HTTP endpoint with a static bearer
// token. The token is not validated before use.
type MessagesBackend struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Client    *http.Client
}

// messagesRequest is the request body for the Messages API.
type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the response body; generated text sits in content[].text.
type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete posts one single-turn request and returns the first text block.
func (b *MessagesBackend) Complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    []message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	base := b.BaseURL
	if base == "" {
		base = DefaultMessagesURL
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	if b.UserAgent != "" {
		httpReq.Header.Set("User-Agent", b.UserAgent)
	}

	resp, err := httputil.Do(ctx, b.Client, httpReq, messagesService)
	if err != nil {
		return "", err
	}

	var mr messagesResponse
	if err := httputil.DecodeJSON(resp, messagesService, &mr); err != nil {
		return "", err
	}

	for _, block := range mr.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", &httputil.UpstreamError{
		Service:    messagesService,
		StatusCode: resp.StatusCode,
		Msg:        "response has no text content",
	}
}
