// Package selector decides, per request and per capability, whether work runs
// against the AI provider or the deterministic heuristic engine.
package selector

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/domain/mode"
	"github.com/kailas-cloud/astrobio/internal/domain/summary"
	"github.com/kailas-cloud/astrobio/internal/logger"
	"github.com/kailas-cloud/astrobio/internal/metrics"
)

// Fallback reasons reported in metrics and logs.
const (
	ReasonUnconfigured  = "unconfigured"
	ReasonUnsupported   = "unsupported"
	ReasonProviderError = "provider_error"
)

const tracerName = "github.com/kailas-cloud/astrobio/internal/usecase/selector"

// AI is the capability-level provider contract the strategies run against.
type AI interface {
	Name() string
	SupportsEmbeddings() bool
	Summarize(ctx context.Context, req summary.Request) (summary.Summary, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Generate(ctx context.Context, req domain.GenerateRequest) (string, error)
}

// Selector is built once at startup and never changes.
type Selector struct {
	ai     AI
	logger *zap.Logger
	tracer trace.Tracer
}

// New creates a selector. A nil ai means every capability runs heuristically.
func New(ai AI, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		ai:     ai,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// Heuristic returns a selector without a provider.
func Heuristic(logger *zap.Logger) *Selector {
	return New(nil, logger)
}

// Select reports the mode a capability would run in before any call is made.
func (s *Selector) Select(c mode.Capability) mode.Mode {
	if _, ok := s.unavailable(c); ok {
		return mode.Heuristic
	}
	return mode.AI
}

// ProviderName returns the configured provider name, or "" in heuristic-only mode.
func (s *Selector) ProviderName() string {
	if s.ai == nil {
		return ""
	}
	return s.ai.Name()
}

// unavailable returns the fallback reason when c cannot run in AI mode at all.
func (s *Selector) unavailable(c mode.Capability) (string, bool) {
	if s.ai == nil {
		return ReasonUnconfigured, true
	}
	if c.NeedsEmbeddings() && !s.ai.SupportsEmbeddings() {
		return ReasonUnsupported, true
	}
	return "", false
}

// Run executes the AI strategy when the capability is available and falls back
// to the heuristic strategy on any AI error. Errors returned by the heuristic
// strategy are returned as is; AI errors never reach the caller.
func Run[T any](
	ctx context.Context, s *Selector, c mode.Capability,
	ai func(context.Context, AI) (T, error),
	heuristic func(context.Context) (T, error),
) (T, mode.Mode, error) {
	ctx, span := s.tracer.Start(ctx, "mode."+string(c),
		trace.WithAttributes(attribute.String("capability", string(c))))
	defer span.End()

	if reason, ok := s.unavailable(c); ok {
		metrics.FallbacksTotal.WithLabelValues(string(c), reason).Inc()
		span.SetAttributes(attribute.String("mode", string(mode.Heuristic)), attribute.String("reason", reason))
		return runHeuristic(ctx, span, heuristic)
	}

	out, err := ai(ctx, s.ai)
	if err == nil {
		span.SetAttributes(
			attribute.String("mode", string(mode.AI)),
			attribute.String("provider", s.ai.Name()),
		)
		return out, mode.AI, nil
	}

	log := logger.FromContext(ctx, s.logger)
	log.Warn("AI strategy failed, falling back to heuristic",
		zap.String("capability", string(c)),
		zap.String("provider", s.ai.Name()),
		zap.String("reason", ReasonProviderError),
		zap.Error(err),
	)
	metrics.FallbacksTotal.WithLabelValues(string(c), ReasonProviderError).Inc()
	domain.UsageFromContext(ctx).AddFallback()
	span.AddEvent("fallback", trace.WithAttributes(
		attribute.String("reason", ReasonProviderError),
		attribute.String("error", err.Error()),
	))
	span.SetAttributes(attribute.String("mode", string(mode.Heuristic)))

	return runHeuristic(ctx, span, heuristic)
}

func runHeuristic[T any](
	ctx context.Context, span trace.Span, heuristic func(context.Context) (T, error),
) (T, mode.Mode, error) {
	out, err := heuristic(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		var zero T
		return zero, mode.Heuristic, fmt.Errorf("heuristic: %w", err)
	}
	return out, mode.Heuristic, nil
}
