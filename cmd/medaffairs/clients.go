package main

import (
	"context"
	"io"
	"net/http"

	"github.com/pdiddy/medaffairs/internal/agent"
	"github.com/pdiddy/medaffairs/internal/document"
	"github.com/pdiddy/medaffairs/internal/llm"
	"github.com/pdiddy/medaffairs/internal/pubmed"
	"github.com/pdiddy/medaffairs/pkg/types"
)

func newLiterature() *pubmed.Client {
	return pubmed.NewClient(cfg.Literature)
}

// newGenerator builds the generative client for the configured provider.
// The returned func releases backend resources.
func newGenerator(ctx context.Context) (*llm.Client, func(), error) {
	g := cfg.Generation
	switch g.Provider {
	case types.ProviderGemini:
		b, err := llm.NewGeminiBackend(ctx, g.APIKey)
		if err != nil {
			return nil, nil, err
		}
		return llm.NewClient(b, g), func() { b.Close() }, nil
	default:
		b := &llm.MessagesBackend{
			BaseURL:   g.BaseURL,
			APIKey:    g.APIKey,
			UserAgent: g.UserAgent,
			Client:    &http.Client{Timeout: g.Timeout},
		}
		return llm.NewClient(b, g), func() {}, nil
	}
}

// newAgent wires the research agent; progress goes to progress.
func newAgent(ctx context.Context, progress io.Writer) (*agent.Agent, func(), error) {
	gen, closeGen, err := newGenerator(ctx)
	if err != nil {
		return nil, nil, err
	}
	docs := document.NewMarkdownWriter(cfg.Output.Dir)
	return agent.New(newLiterature(), gen, docs, agent.WithProgress(progress)), closeGen, nil
}
