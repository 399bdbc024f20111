package budget

import (
	"fmt"

	"github.com/kailas-cloud/astrobio/internal/domain"
)

// Period is a budget accounting window.
type Period string

// Period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod maps a query value to a Period. Empty means day.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", domain.NewValidationError("period", fmt.Sprintf("must be day or month, got %q", s))
	}
}

// Report is the provider token budget for one period.
// A zero limit is unlimited and reports remaining as -1.
type Report struct {
	period    Period
	provider  string
	start     int64
	end       int64
	limit     int64
	used      int64
	remaining int64
}

// NewReport creates a Report. start and end are Unix milliseconds.
func NewReport(period Period, provider string, start, end, limit, used, remaining int64) Report {
	return Report{
		period:    period,
		provider:  provider,
		start:     start,
		end:       end,
		limit:     limit,
		used:      used,
		remaining: remaining,
	}
}

func (r Report) Period() Period     { return r.period }
func (r Report) Provider() string   { return r.provider }
func (r Report) PeriodStart() int64 { return r.start }
func (r Report) PeriodEnd() int64   { return r.end }
func (r Report) TokensLimit() int64 { return r.limit }
func (r Report) TokensUsed() int64  { return r.used }
func (r Report) Remaining() int64   { return r.remaining }

// Exhausted reports whether a limited budget has no tokens left.
func (r Report) Exhausted() bool { return r.limit > 0 && r.remaining <= 0 }

// ResetsAt is the end of the period in Unix milliseconds.
func (r Report) ResetsAt() int64 { return r.end }
