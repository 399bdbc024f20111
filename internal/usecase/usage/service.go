package usage

import (
	"context"
	"time"

	"github.com/kailas-cloud/astrobio/internal/domain/budget"
)

// Service handles provider token usage reporting.
type Service struct {
	counters Counters
	provider string
	now      func() time.Time
}

// New creates a Service. c can be nil (heuristic-only or unlimited mode).
func New(c Counters, provider string) *Service {
	return &Service{counters: c, provider: provider, now: time.Now}
}

// Report builds the budget report for the given period. Unknown periods report the day.
func (s *Service) Report(_ context.Context, period budget.Period) budget.Report {
	now := s.now().UTC()
	var start, end time.Time
	switch period {
	case budget.PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	default:
		period = budget.PeriodDay
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
	}

	var limit, used int64
	if s.counters != nil {
		limit, used = s.counters.Counters(period)
	}
	remaining := int64(-1)
	if limit > 0 {
		remaining = max(limit-used, 0)
	}

	return budget.NewReport(period, s.provider, start.UnixMilli(), end.UnixMilli(), limit, used, remaining)
}
