package document

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// MaxAbstractSize is the maximum abstract size in bytes.
const MaxAbstractSize = 65536

// Document is a corpus entry (immutable value object).
type Document struct {
	id        string
	title     string
	abstract  string
	organism  string
	mission   string
	year      int
	tags      []string
	embedding []float32
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_.-]+$, 1-256 chars. Title is required, year must be positive.
func New(id, title, abstract, organism, mission string, year int, tags []string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with dots, underscores and hyphens")
	}
	if strings.TrimSpace(title) == "" {
		return Document{}, fmt.Errorf("title is required")
	}
	if len(abstract) > MaxAbstractSize {
		return Document{}, fmt.Errorf("abstract too large (max %d bytes)", MaxAbstractSize)
	}
	if year <= 0 {
		return Document{}, fmt.Errorf("year must be positive, got %d", year)
	}

	return Document{
		id:       id,
		title:    title,
		abstract: abstract,
		organism: organism,
		mission:  mission,
		year:     year,
		tags:     dedupeTags(tags),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, title, abstract, organism, mission string, year int,
	tags []string, embedding []float32,
) Document {
	return Document{
		id: id, title: title, abstract: abstract, organism: organism,
		mission: mission, year: year, tags: slices.Clone(tags), embedding: slices.Clone(embedding),
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Abstract returns the document abstract.
func (d *Document) Abstract() string { return d.abstract }

// Organism returns the studied organism category.
func (d *Document) Organism() string { return d.organism }

// Mission returns the mission the study belongs to.
func (d *Document) Mission() string { return d.mission }

// Year returns the publication year.
func (d *Document) Year() int { return d.year }

// Tags returns a copy of the document tags.
func (d *Document) Tags() []string {
	if d.tags == nil {
		return nil
	}
	out := make([]string, len(d.tags))
	copy(out, d.tags)
	return out
}

// Embedding returns a copy of the embedding vector, nil outside AI mode.
func (d *Document) Embedding() []float32 { return slices.Clone(d.embedding) }

// Dimensions returns the embedding length, 0 without one.
func (d *Document) Dimensions() int { return len(d.embedding) }

// HasEmbedding reports whether an embedding is attached.
func (d *Document) HasEmbedding() bool { return len(d.embedding) > 0 }

// WithEmbedding returns a copy with its own copy of v as the embedding.
func (d *Document) WithEmbedding(v []float32) Document {
	return Document{
		id: d.id, title: d.title, abstract: d.abstract, organism: d.organism,
		mission: d.mission, year: d.year, tags: d.tags, embedding: slices.Clone(v),
	}
}

// SearchText is the text scored by keyword search: title, abstract and tags.
func (d *Document) SearchText() string {
	parts := make([]string, 0, 2+len(d.tags))
	parts = append(parts, d.title, d.abstract)
	parts = append(parts, d.tags...)
	return strings.Join(parts, " ")
}

// EmbeddingText is the text embedded for semantic search.
func (d *Document) EmbeddingText() string {
	return d.title + "\n" + d.abstract
}

// tags form a set; first occurrence wins, order is kept.
func dedupeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
