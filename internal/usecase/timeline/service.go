package timeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/astrobio/internal/domain"
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
	"github.com/kailas-cloud/astrobio/internal/domain/mode"
	domtl "github.com/kailas-cloud/astrobio/internal/domain/timeline"
	"github.com/kailas-cloud/astrobio/internal/usecase/selector"
)

const (
	narratorSystem = "You summarize crisply."
	// DefaultConcurrency bounds parallel narrative requests.
	DefaultConcurrency = 4
)

// Service groups the corpus by mission.
type Service struct {
	corpus      Corpus
	sel         *selector.Selector
	concurrency int
}

// New creates a timeline service.
func New(corpus Corpus, sel *selector.Selector) *Service {
	return &Service{corpus: corpus, sel: sel, concurrency: DefaultConcurrency}
}

// WithConcurrency overrides the narrative fan-out limit.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Build returns missions in first-appearance order with items sorted by year.
// In AI mode every mission carries a narrative; if any narrative fails, none do.
func (s *Service) Build(ctx context.Context) (domtl.Timeline, error) {
	docs, err := s.corpus.All()
	if err != nil {
		return domtl.Timeline{}, fmt.Errorf("load corpus: %w", err)
	}

	entries := Group(docs)

	narrated, m, err := selector.Run(ctx, s.sel, mode.Narrate,
		func(ctx context.Context, ai selector.AI) ([]domtl.Entry, error) {
			return s.narrate(ctx, ai, entries)
		},
		func(context.Context) ([]domtl.Entry, error) {
			return entries, nil
		},
	)
	if err != nil {
		return domtl.Timeline{}, fmt.Errorf("timeline: %w", err)
	}
	return domtl.Timeline{Mode: m, Missions: narrated}, nil
}

// narrate fills summaries on a copy so a partial failure never leaks.
func (s *Service) narrate(ctx context.Context, ai selector.AI, entries []domtl.Entry) ([]domtl.Entry, error) {
	out := slices.Clone(entries)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range out {
		g.Go(func() error {
			text, err := ai.Generate(gctx, domain.GenerateRequest{
				System: narratorSystem,
				Prompt: narrativePrompt(out[i].Items),
			})
			if err != nil {
				return fmt.Errorf("narrate %s: %w", out[i].Mission, err)
			}
			out[i].Summary = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func narrativePrompt(items []domtl.Item) string {
	var b strings.Builder
	b.WriteString("Summarize the following mission-related studies in ~2 sentences:")
	for _, it := range items {
		b.WriteString("\n- ")
		b.WriteString(it.Title)
	}
	return b.String()
}

// Group buckets documents by mission in first-appearance order. Items within a
// mission are sorted by year ascending; equal years keep corpus order.
func Group(docs []domdoc.Document) []domtl.Entry {
	index := make(map[string]int)
	entries := make([]domtl.Entry, 0)
	for _, d := range docs {
		i, ok := index[d.Mission()]
		if !ok {
			i = len(entries)
			index[d.Mission()] = i
			entries = append(entries, domtl.Entry{Mission: d.Mission()})
		}
		entries[i].Items = append(entries[i].Items, domtl.Item{
			ID:       d.ID(),
			Year:     d.Year(),
			Organism: d.Organism(),
			Title:    d.Title(),
		})
	}
	for i := range entries {
		slices.SortStableFunc(entries[i].Items, func(a, b domtl.Item) int { return a.Year - b.Year })
		entries[i].Count = len(entries[i].Items)
	}
	return entries
}
