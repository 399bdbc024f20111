package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/metrics"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(key string) ([]float32, bool)
	Set(key string, vec []float32)
}

// Provider caches embeddings in front of a provider. Generation passes through.
type Provider struct {
	domain.Provider
	store  store
	logger *zap.Logger
}

// New creates a caching decorator.
func New(inner domain.Provider, s store, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{Provider: inner, store: s, logger: logger}
}

// Embed returns a cached embedding or calls the inner provider.
// Cache hit: Cached is set and TotalTokens = 0.
func (p *Provider) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := p.cacheKey(text)

	if vec, ok := p.store.Get(key); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
		return domain.EmbeddingResult{Embedding: slices.Clone(vec), Cached: true}, nil
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	result, err := p.Provider.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	p.put(key, result.Embedding)
	return result, nil
}

// BatchEmbed serves cached texts from the store and embeds the rest in one
// inner batch. Token counts cover the inner batch only.
func (p *Provider) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		keys[i] = p.cacheKey(text)
		if vec, ok := p.store.Get(keys[i]); ok {
			out[i] = slices.Clone(vec)
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	hits := len(texts) - len(missIdx)
	metrics.EmbeddingCacheTotal.WithLabelValues("hit").Add(float64(hits))
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Add(float64(len(missIdx)))

	if len(missTexts) == 0 {
		return domain.BatchEmbeddingResult{Embeddings: out}, nil
	}

	res, err := p.innerBatch(ctx, missTexts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	if len(res.Embeddings) != len(missTexts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"batch embed: got %d vectors for %d texts: %w",
			len(res.Embeddings), len(missTexts), domain.ErrProviderError)
	}

	for j, i := range missIdx {
		out[i] = res.Embeddings[j]
		p.put(keys[i], res.Embeddings[j])
	}

	p.logger.Debug("Batch embedding cache",
		zap.Int("hits", hits),
		zap.Int("misses", len(missIdx)),
	)

	return domain.BatchEmbeddingResult{
		Embeddings:   out,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

func (p *Provider) innerBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := p.Provider.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		return res, nil
	}
	res, err := domain.BatchFallback(ctx, p.Provider, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return res, nil
}

// cacheKey scopes entries by provider so a switched provider never reuses vectors.
func (p *Provider) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return p.Name() + ":" + hex.EncodeToString(h[:])
}

func (p *Provider) put(key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	p.store.Set(key, slices.Clone(vec))
}
