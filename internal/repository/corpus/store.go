package corpus

import (
	"fmt"

	"github.com/kailas-cloud/astrobio/internal/domain"
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
)

// Store is the immutable, in-memory corpus. Safe for concurrent reads.
type Store struct {
	docs []domdoc.Document
	byID map[string]int
	err  error
}

// NewStore indexes docs. IDs must be unique.
func NewStore(docs []domdoc.Document) (*Store, error) {
	byID := make(map[string]int, len(docs))
	for i := range docs {
		if _, dup := byID[docs[i].ID()]; dup {
			return nil, fmt.Errorf("duplicate document id %q", docs[i].ID())
		}
		byID[docs[i].ID()] = i
	}
	cp := make([]domdoc.Document, len(docs))
	copy(cp, docs)
	return &Store{docs: cp, byID: byID}, nil
}

// Unavailable returns a store that fails every read with ErrCorpusUnavailable.
func Unavailable(cause error) *Store {
	return &Store{err: fmt.Errorf("%w: %w", domain.ErrCorpusUnavailable, cause)}
}

// All returns every document in load order.
func (s *Store) All() ([]domdoc.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domdoc.Document, len(s.docs))
	copy(out, s.docs)
	return out, nil
}

// ByID returns a document or domain.ErrNotFound.
func (s *Store) ByID(id string) (domdoc.Document, error) {
	if s.err != nil {
		return domdoc.Document{}, s.err
	}
	i, ok := s.byID[id]
	if !ok {
		return domdoc.Document{}, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}
	return s.docs[i], nil
}

// Len returns the number of documents.
func (s *Store) Len() int { return len(s.docs) }

// Err returns the load failure, nil for a usable store.
func (s *Store) Err() error { return s.err }

// Embedded reports how many documents carry an embedding.
func (s *Store) Embedded() int {
	n := 0
	for i := range s.docs {
		if s.docs[i].HasEmbedding() {
			n++
		}
	}
	return n
}

// WithEmbeddings returns a new store with vecs attached positionally.
// A nil entry keeps the document's existing embedding.
func (s *Store) WithEmbeddings(vecs [][]float32) (*Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(vecs) != len(s.docs) {
		return nil, fmt.Errorf("embedding count %d does not match corpus size %d", len(vecs), len(s.docs))
	}
	docs := make([]domdoc.Document, len(s.docs))
	for i := range s.docs {
		if vecs[i] == nil {
			docs[i] = s.docs[i]
			continue
		}
		docs[i] = s.docs[i].WithEmbedding(vecs[i])
	}
	return &Store{docs: docs, byID: s.byID}, nil
}
