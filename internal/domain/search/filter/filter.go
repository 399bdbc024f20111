package filter

import (
	"fmt"

	"github.com/kailas-cloud/astrobio/internal/domain/document"
)

// Filter restricts search candidates by exact metadata match.
// Every set field must match (AND semantics); unset fields match everything.
type Filter struct {
	organism string
	mission  string
	year     *int
}

// New validates and creates a Filter.
func New(organism, mission string, year *int) (Filter, error) {
	if year != nil && *year <= 0 {
		return Filter{}, fmt.Errorf("year must be positive, got %d", *year)
	}
	var y *int
	if year != nil {
		v := *year
		y = &v
	}
	return Filter{organism: organism, mission: mission, year: y}, nil
}

// Organism returns the organism constraint ("" when unset).
func (f Filter) Organism() string { return f.organism }

// Mission returns the mission constraint ("" when unset).
func (f Filter) Mission() string { return f.mission }

// Year returns the year constraint (nil when unset).
func (f Filter) Year() *int { return f.year }

// IsEmpty reports whether the filter has no constraints.
func (f Filter) IsEmpty() bool {
	return f.organism == "" && f.mission == "" && f.year == nil
}

// Matches reports whether doc satisfies every set constraint.
func (f Filter) Matches(doc *document.Document) bool {
	if f.organism != "" && doc.Organism() != f.organism {
		return false
	}
	if f.mission != "" && doc.Mission() != f.mission {
		return false
	}
	if f.year != nil && doc.Year() != *f.year {
		return false
	}
	return true
}

// Apply returns the documents matching f, preserving order.
func (f Filter) Apply(docs []document.Document) []document.Document {
	if f.IsEmpty() {
		return docs
	}
	out := make([]document.Document, 0, len(docs))
	for i := range docs {
		if f.Matches(&docs[i]) {
			out = append(out, docs[i])
		}
	}
	return out
}
