package gap

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/astrobio/internal/domain"
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
	domgap "github.com/kailas-cloud/astrobio/internal/domain/gap"
	"github.com/kailas-cloud/astrobio/internal/domain/mode"
	"github.com/kailas-cloud/astrobio/internal/domain/text"
	"github.com/kailas-cloud/astrobio/internal/usecase/selector"
)

const analystSystem = "You analyze gaps succinctly."

// Service reports under-explored (organism, mission) combinations for a topic.
type Service struct {
	corpus Corpus
	sel    *selector.Selector
}

// New creates a gap analysis service.
func New(corpus Corpus, sel *selector.Selector) *Service {
	return &Service{corpus: corpus, sel: sel}
}

// Analyze returns a narrative in AI mode or a structured list in heuristic mode.
func (s *Service) Analyze(ctx context.Context, req domgap.Request) (domgap.Report, error) {
	docs, err := s.corpus.All()
	if err != nil {
		return domgap.Report{}, fmt.Errorf("load corpus: %w", err)
	}

	report, m, err := selector.Run(ctx, s.sel, mode.Analyze,
		func(ctx context.Context, ai selector.AI) (domgap.Report, error) {
			narrative, err := ai.Generate(ctx, domain.GenerateRequest{
				System: analystSystem,
				Prompt: gapPrompt(req.Topic(), docs),
			})
			if err != nil {
				return domgap.Report{}, err
			}
			return domgap.Report{Narrative: narrative}, nil
		},
		func(context.Context) (domgap.Report, error) {
			return domgap.Report{Items: Coverage(docs, req.Topic(), req.Threshold())}, nil
		},
	)
	if err != nil {
		return domgap.Report{}, fmt.Errorf("gap analyze: %w", err)
	}
	report.Topic = req.Topic()
	report.Mode = m
	return report, nil
}

func gapPrompt(topic string, docs []domdoc.Document) string {
	var b strings.Builder
	b.WriteString("Identify underexplored research gaps in NASA bioscience related to the topic. ")
	b.WriteString("Use only general knowledge and the following demo corpus items (titles only). ")
	b.WriteString("Return 3-5 gaps with short rationales.\n\nDemo corpus titles:")
	for _, d := range docs {
		b.WriteString("\n- ")
		b.WriteString(d.Title())
	}
	b.WriteString("\n\nTopic: ")
	b.WriteString(topic)
	return b.String()
}

type pairKey struct {
	organism string
	mission  string
}

// Coverage walks every (organism, mission) pair seen in the corpus and reports
// the pairs whose topic-relevant studies fall below threshold or leave holes in
// year coverage. Pairs are ordered by first appearance of organism, then mission.
func Coverage(docs []domdoc.Document, topic string, threshold int) []domgap.Item {
	if threshold <= 0 {
		threshold = domgap.DefaultThreshold
	}

	var organisms, missions []string
	for _, d := range docs {
		if !slices.Contains(organisms, d.Organism()) {
			organisms = append(organisms, d.Organism())
		}
		if !slices.Contains(missions, d.Mission()) {
			missions = append(missions, d.Mission())
		}
	}

	terms := text.NewTokenSet(topic)
	years := make(map[pairKey][]int)
	for _, d := range docs {
		if !terms.Intersects(text.NewTokenSet(d.SearchText())) {
			continue
		}
		k := pairKey{d.Organism(), d.Mission()}
		years[k] = append(years[k], d.Year())
	}

	items := make([]domgap.Item, 0)
	for _, o := range organisms {
		for _, m := range missions {
			if item, ok := assess(o, m, years[pairKey{o, m}], threshold); ok {
				items = append(items, item)
			}
		}
	}
	return items
}

func assess(organism, mission string, years []int, threshold int) (domgap.Item, bool) {
	item := domgap.Item{Organism: organism, Mission: mission, Count: len(years)}
	if len(years) == 0 {
		item.Reason = domgap.ReasonUncovered
		return item, true
	}

	distinct := slices.Clone(years)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)
	item.YearFrom, item.YearTo = distinct[0], distinct[len(distinct)-1]

	switch {
	case len(years) < threshold:
		item.Reason = domgap.ReasonSparse
	case len(distinct) == 1:
		item.Reason = domgap.ReasonSingle
	default:
		item.MissingYears = missingYears(distinct)
		if len(item.MissingYears) == 0 {
			return domgap.Item{}, false
		}
		item.Reason = domgap.ReasonYearHoles
	}
	return item, true
}

// maxMissingYears bounds the listed holes; YearFrom and YearTo still carry the full span.
const maxMissingYears = 50

// missingYears lists the earliest years absent between the first and last of a
// sorted, distinct slice, at most maxMissingYears of them.
func missingYears(sorted []int) []int {
	var out []int
	for i := 1; i < len(sorted); i++ {
		for y := sorted[i-1] + 1; y < sorted[i]; y++ {
			if len(out) == maxMissingYears {
				return out
			}
			out = append(out, y)
		}
	}
	return out
}
