package usage

import "github.com/kailas-cloud/astrobio/internal/domain/budget"

// Counters exposes the token cap and consumption of one budget period.
// A zero limit means unlimited.
type Counters interface {
	Counters(period budget.Period) (limit, used int64)
}
