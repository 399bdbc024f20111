package embcache

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// Memory is an in-process vector store bounded by entry count.
type Memory struct {
	cache *ristretto.Cache[string, []float32]
}

// NewMemory creates a store holding up to maxEntries vectors.
func NewMemory(maxEntries int64) (*Memory, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("embedding cache size must be positive, got %d", maxEntries)
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Memory{cache: c}, nil
}

// Get returns the vector stored under key.
func (m *Memory) Get(key string) ([]float32, bool) {
	return m.cache.Get(key)
}

// Set stores vec under key. Each entry costs 1 regardless of dimensions.
// Set waits for the write buffer so a following Get observes the entry.
func (m *Memory) Set(key string, vec []float32) {
	m.cache.Set(key, vec, 1)
	m.cache.Wait()
}

// Close stops the cache goroutines.
func (m *Memory) Close() {
	m.cache.Close()
}
