package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/metrics"
)

// DefaultMaxAPIBatchSize is the largest batch sent in a single embedding request.
const DefaultMaxAPIBatchSize = 256

// DefaultTimeout bounds a single provider call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Limits configures the Instrumented decorator.
type Limits struct {
	// Timeout bounds each provider call. Zero means DefaultTimeout.
	Timeout time.Duration
	// RPS is the steady-state request rate. Zero disables rate limiting.
	RPS float64
	// Burst is the limiter bucket size. Values below 1 are treated as 1.
	Burst int
}

// Instrumented wraps a raw provider with per-call timeout, rate limiting and logging.
// Transport metrics (requests, duration, tokens) are recorded in the transport adapters.
// This layer owns the rate limiter, its wait metric and the optional token budget.
type Instrumented struct {
	inner   domain.Provider
	limiter *rate.Limiter
	budget  *Budget
	timeout time.Duration
	logger  *zap.Logger
}

// NewInstrumented wraps a provider with limits and observability.
func NewInstrumented(inner domain.Provider, limits Limits, logger *zap.Logger) *Instrumented {
	timeout := limits.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var limiter *rate.Limiter
	if limits.RPS > 0 {
		burst := max(limits.Burst, 1)
		limiter = rate.NewLimiter(rate.Limit(limits.RPS), burst)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{
		inner:   inner,
		limiter: limiter,
		timeout: timeout,
		logger:  logger,
	}
}

// WithBudget enforces a token budget on every call.
func (p *Instrumented) WithBudget(b *Budget) *Instrumented {
	p.budget = b
	return p
}

// Name returns the wrapped provider name.
func (p *Instrumented) Name() string { return p.inner.Name() }

// SupportsEmbeddings reports whether the wrapped provider can embed text.
func (p *Instrumented) SupportsEmbeddings() bool { return p.inner.SupportsEmbeddings() }

// Embed waits for the limiter, then delegates with a bounded context.
func (p *Instrumented) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := p.wait(ctx); err != nil {
		return domain.EmbeddingResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.inner.Name()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, wrap("embed", err)
	}
	p.record(result.TotalTokens)

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.inner.Name()),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed splits texts into sub-batches and delegates each one.
func (p *Instrumented) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	var all [][]float32
	var totalPrompt, totalTokens int

	for offset := 0; offset < len(texts); offset += DefaultMaxAPIBatchSize {
		end := min(offset+DefaultMaxAPIBatchSize, len(texts))
		chunk := texts[offset:end]

		res, err := p.embedChunk(ctx, chunk)
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.inner.Name()),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, wrap("batch embed", err)
		}
		if len(res.Embeddings) != len(chunk) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"batch embed: got %d vectors for %d texts: %w",
				len(res.Embeddings), len(chunk), domain.ErrProviderError)
		}

		all = append(all, res.Embeddings...)
		totalPrompt += res.PromptTokens
		totalTokens += res.TotalTokens
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.inner.Name()),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", totalTokens),
	)

	return domain.BatchEmbeddingResult{
		Embeddings:   all,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}

func (p *Instrumented) embedChunk(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if err := p.wait(ctx); err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if be, ok := p.inner.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("inner batch embed: %w", err)
		}
		p.record(res.TotalTokens)
		return res, nil
	}
	res, err := domain.BatchFallback(ctx, p.inner, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("inner batch fallback: %w", err)
	}
	p.record(res.TotalTokens)
	return res, nil
}

// Generate waits for the limiter, then delegates with a bounded context.
func (p *Instrumented) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	if err := p.wait(ctx); err != nil {
		return domain.GenerateResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	result, err := p.inner.Generate(ctx, req)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Generate request failed",
			zap.String("provider", p.inner.Name()),
			zap.Duration("duration", duration),
			zap.Bool("json", req.JSON),
			zap.Error(err),
		)
		return domain.GenerateResult{}, wrap("generate", err)
	}
	p.record(result.TotalTokens)

	p.logger.Debug("Generate request completed",
		zap.String("provider", p.inner.Name()),
		zap.Duration("duration", duration),
		zap.Int("response_chars", len(result.Text)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// HealthCheck delegates to the wrapped provider when it supports health checks.
func (p *Instrumented) HealthCheck(ctx context.Context) error {
	hc, ok := p.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := hc.HealthCheck(ctx); err != nil {
		return wrap("health check", err)
	}
	return nil
}

func (p *Instrumented) wait(ctx context.Context) error {
	if p.budget != nil {
		if err := p.budget.Check(); err != nil {
			p.logger.Warn("Provider call blocked by token budget", zap.String("provider", p.inner.Name()))
			return err
		}
	}
	if p.limiter == nil {
		return nil
	}
	start := time.Now()
	err := p.limiter.Wait(ctx)
	metrics.ProviderRateLimitWait.WithLabelValues(p.inner.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		p.logger.Warn("Rate limiter wait aborted",
			zap.String("provider", p.inner.Name()),
			zap.Error(err),
		)
		return fmt.Errorf("rate limit wait: %w: %w", domain.ErrProviderError, err)
	}
	return nil
}

func (p *Instrumented) record(tokens int) {
	if p.budget != nil {
		p.budget.Record(tokens)
	}
}

// wrap guarantees that every failure leaving the decorator matches ErrProviderError
// or ErrCapabilityNotSupported.
func wrap(op string, err error) error {
	if errors.Is(err, domain.ErrProviderError) || errors.Is(err, domain.ErrCapabilityNotSupported) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrProviderError, err)
}
