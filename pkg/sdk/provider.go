package astrobio

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/astrobio/internal/domain"
)

// Provider is a custom AI backend. Errors fall back to heuristic mode.
type Provider interface {
	Name() string
	SupportsEmbeddings() bool
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding   []float32
	TotalTokens int
}

// GenerateRequest is a system instruction plus prompt.
// JSON is set when the caller expects a JSON-only answer.
type GenerateRequest struct {
	System string
	Prompt string
	JSON   bool
}

// GenerateResult is generated text plus token usage.
type GenerateResult struct {
	Text        string
	TotalTokens int
}

// providerAdapter wraps a public Provider to satisfy domain.Provider.
type providerAdapter struct {
	inner Provider
}

func (a *providerAdapter) Name() string { return a.inner.Name() }

func (a *providerAdapter) SupportsEmbeddings() bool { return a.inner.SupportsEmbeddings() }

func (a *providerAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w: %w", domain.ErrProviderError, err)
	}
	return domain.EmbeddingResult{Embedding: r.Embedding, TotalTokens: r.TotalTokens}, nil
}

func (a *providerAdapter) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	r, err := a.inner.Generate(ctx, GenerateRequest{System: req.System, Prompt: req.Prompt, JSON: req.JSON})
	if err != nil {
		return domain.GenerateResult{}, fmt.Errorf("generate: %w: %w", domain.ErrProviderError, err)
	}
	return domain.GenerateResult{Text: r.Text, TotalTokens: r.TotalTokens}, nil
}
