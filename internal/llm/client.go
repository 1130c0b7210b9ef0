// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps a text-generation API: prompt plus sampling parameters in,
// generated text out. Backends implement the wire protocol; Client applies
// defaults and provides the medical-affairs prompt templates. Returned text is
// passed through verbatim.
package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/medaffairs/pkg/types"
)

const (
	DefaultMessagesModel = "claude-sonnet-4-5-20250929"
	DefaultGeminiModel   = "gemini-1.5-flash"
	DefaultMaxTokens     = 4000
	DefaultTemperature   = 0.7
)

// Request is one single-turn generation call.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Backend performs a generation call against one provider. Implementations
// return *httputil.UpstreamError for non-success statuses or responses that
// carry no text, and *httputil.NetworkError for transport failures.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Option adjusts a Request before it is sent.
type Option func(*Request)

// WithModel overrides the model for one call.
func WithModel(model string) Option {
	return func(r *Request) { r.Model = model }
}

// WithMaxTokens overrides the maximum output length for one call.
func WithMaxTokens(n int) Option {
	return func(r *Request) { r.MaxTokens = n }
}

// WithTemperature overrides the sampling temperature for one call.
func WithTemperature(t float64) Option {
	return func(r *Request) { r.Temperature = t }
}

// WithSystem sets a system instruction for one call.
func WithSystem(s string) Option {
	return func(r *Request) { r.System = s }
}

// Client holds a backend plus the default model, output length, and
// temperature. It is stateless between calls.
type Client struct {
	backend     Backend
	Model       string
	MaxTokens   int
	Temperature float64
	Log         logrus.FieldLogger
}

// NewClient wraps backend with defaults taken from cfg. A non-positive
// MaxTokens falls back to DefaultMaxTokens and an empty model to the
// provider's default model. Temperature is used as given, so 0 selects
// greedy sampling; configuration loading supplies DefaultTemperature.
func NewClient(backend Backend, cfg types.GenerationConfig) *Client {
	c := &Client{
		backend:     backend,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
	if c.Model == "" {
		c.Model = DefaultMessagesModel
		if cfg.Provider == types.ProviderGemini {
			c.Model = DefaultGeminiModel
		}
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

func (c *Client) log() logrus.FieldLogger {
	if c.Log != nil {
		return c.Log
	}
	return logrus.WithField("component", "llm")
}

// Generate sends prompt to the backend and returns the generated text.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	req := Request{
		Model:       c.Model,
		Prompt:      prompt,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
	for _, opt := range opts {
		opt(&req)
	}

	log := c.log().WithFields(logrus.Fields{
		"model":       req.Model,
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	})
	log.WithField("prompt_chars", len(prompt)).Debug("generating")

	text, err := c.backend.Complete(ctx, req)
	if err != nil {
		log.WithError(err).Error("generation failed")
		return "", fmt.Errorf("generating text: %w", err)
	}
	return text, nil
}
