package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/metrics"
)

// Compile-time check.
var _ domain.Provider = (*Provider)(nil)

// DefaultMaxTokens bounds a single completion.
const DefaultMaxTokens = 1024

// Config holds the Anthropic provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      *zap.Logger
}

// Provider is a generation-only AI provider backed by the Anthropic Messages API.
// The API has no embedding endpoint, so search always runs in heuristic mode.
type Provider struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// New creates an Anthropic provider.
func New(cfg *Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: api key is required: %w", domain.ErrProviderUnavailable)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic: model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Name returns the provider label used in metrics and logs.
func (p *Provider) Name() string { return "anthropic" }

// SupportsEmbeddings is always false.
func (p *Provider) SupportsEmbeddings() bool { return false }

// Embed always fails with domain.ErrCapabilityNotSupported.
func (p *Provider) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf("anthropic embeddings: %w", domain.ErrCapabilityNotSupported)
}

// Generate implements domain.Generator.
func (p *Provider) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	prompt := req.Prompt
	if req.JSON {
		prompt += "\n\nRespond with a single JSON object and nothing else."
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
	}
	if p.temperature > 0 {
		params.Temperature = anthropic.Float(float64(p.temperature))
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	start := time.Now()
	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		metrics.ObserveProviderCall(p.Name(), p.model, "generate", start, 0, "api_error")
		return domain.GenerateResult{}, wrapError(err)
	}

	out := messageText(resp)
	if out == "" {
		metrics.ObserveProviderCall(p.Name(), p.model, "generate", start, 0, "empty_response")
		return domain.GenerateResult{}, fmt.Errorf("no response generated from anthropic: %w", domain.ErrProviderError)
	}

	tokens := int(resp.Usage.InputTokens + resp.Usage.OutputTokens)
	metrics.ObserveProviderCall(p.Name(), p.model, "generate", start, tokens, "")
	return domain.GenerateResult{Text: out, TotalTokens: tokens}, nil
}

func messageText(resp *anthropic.Message) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

func wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("anthropic API error %d: %w", apiErr.StatusCode, domain.ErrProviderError)
	}
	return fmt.Errorf("anthropic request: %w: %w", err, domain.ErrProviderError)
}
