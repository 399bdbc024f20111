package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// ProviderUsage collects AI provider usage for a single request.
// The handler puts a pointer into the context before calling the service;
// the mode selector writes to it; the handler reads it for response headers.
type ProviderUsage struct {
	mu          sync.Mutex
	totalTokens int
	calls       int
	fallbacks   int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *ProviderUsage) {
	u := &ProviderUsage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *ProviderUsage {
	u, _ := ctx.Value(usageKey{}).(*ProviderUsage)
	return u
}

// AddCall records a provider call and the tokens it consumed.
func (u *ProviderUsage) AddCall(tokens int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.calls++
	u.totalTokens += tokens
	u.mu.Unlock()
}

// AddFallback records a fallback to heuristic mode.
func (u *ProviderUsage) AddFallback() {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.fallbacks++
	u.mu.Unlock()
}

// Snapshot returns calls, tokens and fallbacks recorded so far.
func (u *ProviderUsage) Snapshot() (calls, tokens, fallbacks int) {
	if u == nil {
		return 0, 0, 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls, u.totalTokens, u.fallbacks
}
