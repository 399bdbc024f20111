package request

import (
	"fmt"

	"github.com/kailas-cloud/astrobio/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 100
)

// Request is a validated search query. An empty query browses the filtered corpus.
type Request struct {
	query   string
	filters filter.Filter
	limit   int
}

// New validates and normalizes search parameters.
// Defaults: limit=10, clamped to MaxLimit.
func New(query string, filters filter.Filter, limit int) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("limit must not be negative")
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{query: query, filters: filters, limit: limit}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Filters returns the metadata filter.
func (r *Request) Filters() filter.Filter { return r.filters }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }
