package index

import "context"

// Embedder vectorizes document text in batches.
type Embedder interface {
	SupportsEmbeddings() bool
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
