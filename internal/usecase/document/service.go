package document

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/astrobio/internal/domain"
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
	"github.com/kailas-cloud/astrobio/internal/domain/search/filter"
)

// Service exposes read access to the corpus.
type Service struct {
	repo            Repository
	defaultPageSize int
	maxPageSize     int
}

// New creates a document service.
func New(repo Repository) *Service {
	return &Service{
		repo:            repo,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Get retrieves a document by ID.
func (s *Service) Get(_ context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.ByID(id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns one page of documents matching the filter, in corpus order.
// The cursor is opaque to callers; an empty next cursor means the last page.
func (s *Service) List(
	_ context.Context, f filter.Filter, cursor string, limit int,
) ([]domdoc.Document, string, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, "", domain.NewValidationError("cursor", "malformed cursor")
		}
		offset = n
	}

	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	docs, err := s.repo.All()
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	matched := f.Apply(docs)

	if offset >= len(matched) {
		return []domdoc.Document{}, "", nil
	}
	end := min(offset+limit, len(matched))
	next := ""
	if end < len(matched) {
		next = strconv.Itoa(end)
	}
	return matched[offset:end], next, nil
}

// Stats aggregates document counts by organism, mission and year.
func (s *Service) Stats(_ context.Context) (domdoc.Stats, error) {
	docs, err := s.repo.All()
	if err != nil {
		return domdoc.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return domdoc.Aggregate(docs), nil
}
