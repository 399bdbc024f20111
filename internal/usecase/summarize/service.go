package summarize

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/astrobio/internal/domain/mode"
	"github.com/kailas-cloud/astrobio/internal/domain/summary"
	"github.com/kailas-cloud/astrobio/internal/domain/text"
	"github.com/kailas-cloud/astrobio/internal/usecase/selector"
)

// Service condenses free text into an abstract, key takeaways and tags.
type Service struct {
	sel *selector.Selector
}

// New creates a summarization service.
func New(sel *selector.Selector) *Service {
	return &Service{sel: sel}
}

// Summarize runs the AI summarizer and falls back to the extractive heuristic.
func (s *Service) Summarize(ctx context.Context, req summary.Request) (summary.Summary, mode.Mode, error) {
	out, m, err := selector.Run(ctx, s.sel, mode.Summarize,
		func(ctx context.Context, ai selector.AI) (summary.Summary, error) {
			return ai.Summarize(ctx, req)
		},
		func(context.Context) (summary.Summary, error) {
			return text.Summarize(req.Text(), req.Takeaways()), nil
		},
	)
	if err != nil {
		return summary.Summary{}, m, fmt.Errorf("summarize: %w", err)
	}
	return out, m, nil
}
