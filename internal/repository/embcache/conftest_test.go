package embcache

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/astrobio/internal/domain"
)

type mockProvider struct {
	result     domain.EmbeddingResult
	err        error
	embedCalls int
	texts      []string
}

func (m *mockProvider) Name() string             { return "mock" }
func (m *mockProvider) SupportsEmbeddings() bool { return true }

func (m *mockProvider) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	m.texts = append(m.texts, text)
	return m.result, m.err
}

func (m *mockProvider) Generate(_ context.Context, _ domain.GenerateRequest) (domain.GenerateResult, error) {
	return domain.GenerateResult{Text: "generated", TotalTokens: 3}, nil
}

// mockBatchProvider adds native batching on top of mockProvider.
type mockBatchProvider struct {
	mockProvider
	batchCalls int
	batchErr   error
}

func (m *mockBatchProvider) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.texts = append(m.texts, texts...)
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{float32(len(texts[i]))}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 2 * len(texts)}, nil
}

// mapStore implements the consumer interface for tests.
type mapStore struct {
	data map[string][]float32
	sets int
}

func newMapStore() *mapStore { return &mapStore{data: make(map[string][]float32)} }

func (m *mapStore) Get(key string) ([]float32, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mapStore) Set(key string, vec []float32) {
	m.sets++
	m.data[key] = vec
}

var errProviderDown = errors.New("provider down")

func newTestProvider(t *testing.T, inner domain.Provider) (*Provider, *mapStore) {
	t.Helper()
	s := newMapStore()
	return New(inner, s, nil), s
}
