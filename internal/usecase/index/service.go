package index

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/astrobio/internal/domain"
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
)

// Service computes corpus embeddings once at startup.
type Service struct {
	embedder Embedder
	logger   *zap.Logger
}

// New creates an indexing service. embedder can be nil.
func New(embedder Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embedder: embedder, logger: logger}
}

// Vectors returns one vector per document, positionally. Documents that already
// carry an embedding get a nil entry. It returns (nil, nil) when the provider
// cannot embed or nothing needs embedding.
func (s *Service) Vectors(ctx context.Context, docs []domdoc.Document) ([][]float32, error) {
	if s.embedder == nil || !s.embedder.SupportsEmbeddings() {
		return nil, nil
	}

	var (
		texts     []string
		positions []int
		dim       int
	)
	for i := range docs {
		if docs[i].HasEmbedding() {
			dim = docs[i].Dimensions()
			continue
		}
		texts = append(texts, docs[i].EmbeddingText())
		positions = append(positions, i)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	got, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(got) != len(texts) {
		return nil, fmt.Errorf("embed corpus: got %d vectors for %d documents: %w",
			len(got), len(texts), domain.ErrProviderError)
	}

	out := make([][]float32, len(docs))
	for j, v := range got {
		if len(v) == 0 {
			return nil, fmt.Errorf("embed corpus: empty vector for %s: %w", docs[positions[j]].ID(), domain.ErrProviderError)
		}
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim {
			return nil, fmt.Errorf("embed corpus: dimension %d for %s, want %d: %w",
				len(v), docs[positions[j]].ID(), dim, domain.ErrProviderError)
		}
		out[positions[j]] = v
	}

	s.logger.Info("Corpus embedded",
		zap.Int("documents", len(texts)),
		zap.Int("dimensions", dim),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}
