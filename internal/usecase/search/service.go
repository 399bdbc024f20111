package search

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/astrobio/internal/domain"
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
	"github.com/kailas-cloud/astrobio/internal/domain/mode"
	"github.com/kailas-cloud/astrobio/internal/domain/search/request"
	"github.com/kailas-cloud/astrobio/internal/domain/search/result"
	"github.com/kailas-cloud/astrobio/internal/domain/text"
	"github.com/kailas-cloud/astrobio/internal/usecase/selector"
)

// DefaultSnippetLength bounds the abstract prefix returned with each result.
const DefaultSnippetLength = 200

// Response is the mode-agnostic search result set.
type Response struct {
	Results []result.Result
	Mode    mode.Mode
}

// Note names the mode that produced the results.
func (r Response) Note() string { return r.Mode.Note() }

// Service ranks corpus documents against a query and metadata filters.
type Service struct {
	corpus     Corpus
	sel        *selector.Selector
	snippetLen int
}

// New creates a search service.
func New(corpus Corpus, sel *selector.Selector) *Service {
	return &Service{corpus: corpus, sel: sel, snippetLen: DefaultSnippetLength}
}

// WithSnippetLength overrides the snippet bound.
func (s *Service) WithSnippetLength(n int) *Service {
	if n > 0 {
		s.snippetLen = n
	}
	return s
}

type scored struct {
	doc   domdoc.Document
	score float64
}

// Search filters, scores, sorts and truncates the corpus.
// A blank query browses the filtered corpus in corpus order with score 0.
func (s *Service) Search(ctx context.Context, req *request.Request) (Response, error) {
	docs, err := s.corpus.All()
	if err != nil {
		return Response{}, fmt.Errorf("load corpus: %w", err)
	}

	candidates := req.Filters().Apply(docs)
	if len(candidates) == 0 {
		return Response{Results: []result.Result{}, Mode: s.sel.Select(mode.Embed)}, nil
	}

	query := strings.TrimSpace(req.Query())
	terms := text.NewTokenSet(query)
	// Nothing to embed or overlap: list the filtered corpus as stored,
	// without spending a provider call.
	if len(terms) == 0 {
		return s.respond(browse(candidates), mode.Heuristic, req.Limit()), nil
	}

	ranked, m, err := selector.Run(ctx, s.sel, mode.Embed,
		func(ctx context.Context, ai selector.AI) ([]scored, error) {
			return semantic(ctx, ai, query, candidates)
		},
		func(context.Context) ([]scored, error) {
			return keyword(terms, candidates), nil
		},
	)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}
	return s.respond(ranked, m, req.Limit()), nil
}

func (s *Service) respond(ranked []scored, m mode.Mode, limit int) Response {
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]result.Result, 0, len(ranked))
	for _, r := range ranked {
		d := r.doc
		out = append(out, result.New(
			d.ID(), d.Title(), text.Snippet(d.Abstract(), s.snippetLen),
			r.score, d.Organism(), d.Mission(), d.Year(),
		))
	}
	return Response{Results: out, Mode: m}
}

func browse(docs []domdoc.Document) []scored {
	out := make([]scored, len(docs))
	for i, d := range docs {
		out[i] = scored{doc: d}
	}
	return out
}

// keyword ranks every candidate by token overlap. Documents sharing no term
// score 0 and sort after the matches.
func keyword(terms text.TokenSet, docs []domdoc.Document) []scored {
	out := make([]scored, len(docs))
	for i, d := range docs {
		out[i] = scored{doc: d, score: text.Overlap(terms, text.NewTokenSet(d.SearchText()))}
	}
	sortByScore(out)
	return out
}

// semantic scores by cosine similarity against precomputed document embeddings.
func semantic(ctx context.Context, ai selector.AI, query string, docs []domdoc.Document) ([]scored, error) {
	if !slices.ContainsFunc(docs, func(d domdoc.Document) bool { return d.HasEmbedding() }) {
		return nil, fmt.Errorf("corpus has no embeddings: %w", domain.ErrCapabilityNotSupported)
	}

	vec, err := ai.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	out := make([]scored, 0, len(docs))
	for _, d := range docs {
		if !d.HasEmbedding() {
			continue
		}
		if d.Dimensions() != len(vec) {
			return nil, fmt.Errorf("vector dimension mismatch: query %d, document %s has %d: %w",
				len(vec), d.ID(), d.Dimensions(), domain.ErrProviderError)
		}
		score := text.Cosine(vec, d.Embedding())
		if score > 0 {
			out = append(out, scored{doc: d, score: score})
		}
	}
	sortByScore(out)
	return out, nil
}

// sortByScore orders descending; ties keep corpus order.
func sortByScore(s []scored) {
	slices.SortStableFunc(s, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})
}
