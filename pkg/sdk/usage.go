package astrobio

import (
	"context"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/domain/mode"
)

// Usage reports how a single call was served.
type Usage struct {
	Mode          Mode
	ProviderCalls int
	Tokens        int
	// Fallbacks counts AI attempts that failed and were answered heuristically.
	Fallbacks int
}

// usageScope collects provider usage for one SDK call.
type usageScope struct {
	ctx context.Context
	u   *domain.ProviderUsage
}

func newUsageScope(ctx context.Context) usageScope {
	ctx, u := domain.NewContextWithUsage(ctx)
	return usageScope{ctx: ctx, u: u}
}

func (s usageScope) report(m mode.Mode) Usage {
	calls, tokens, fallbacks := s.u.Snapshot()
	return Usage{
		Mode:          Mode(m),
		ProviderCalls: calls,
		Tokens:        tokens,
		Fallbacks:     fallbacks,
	}
}
