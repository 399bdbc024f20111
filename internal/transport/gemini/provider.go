package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/metrics"
)

// Compile-time checks.
var (
	_ domain.Provider      = (*Provider)(nil)
	_ domain.HealthChecker = (*Provider)(nil)
)

// Default models.
const (
	DefaultChatModel      = "gemini-1.5-pro"
	DefaultEmbeddingModel = "text-embedding-004"
)

// Config holds the Gemini provider settings.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Dimensions     int
	Temperature    float32
	Logger         *zap.Logger
}

// Provider is an AI provider backed by the Gemini API.
type Provider struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
	dimensions     int
	temperature    float32
	logger         *zap.Logger
}

// New creates a Gemini provider.
func New(ctx context.Context, cfg *Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required: %w", domain.ErrProviderUnavailable)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		client:         client,
		chatModel:      chatModel,
		embeddingModel: cfg.EmbeddingModel,
		dimensions:     cfg.Dimensions,
		temperature:    cfg.Temperature,
		logger:         logger,
	}, nil
}

// Name returns the provider label used in metrics and logs.
func (p *Provider) Name() string { return "gemini" }

// SupportsEmbeddings reports whether an embedding model is configured.
func (p *Provider) SupportsEmbeddings() bool { return p.embeddingModel != "" }

// Embed implements domain.Embedder.
func (p *Provider) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if p.embeddingModel == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("gemini embeddings: %w", domain.ErrCapabilityNotSupported)
	}

	var embCfg *genai.EmbedContentConfig
	if p.dimensions > 0 {
		dim := int32(p.dimensions)
		embCfg = &genai.EmbedContentConfig{OutputDimensionality: &dim}
	}

	start := time.Now()
	result, err := p.client.Models.EmbedContent(ctx, p.embeddingModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, embCfg)
	if err != nil {
		metrics.ObserveProviderCall(p.Name(), p.embeddingModel, "embed", start, 0, "api_error")
		return domain.EmbeddingResult{}, wrapError("embed", err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		metrics.ObserveProviderCall(p.Name(), p.embeddingModel, "embed", start, 0, "empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrProviderError)
	}

	metrics.ObserveProviderCall(p.Name(), p.embeddingModel, "embed", start, 0, "")
	return domain.EmbeddingResult{Embedding: result.Embeddings[0].Values}, nil
}

// Generate implements domain.Generator.
func (p *Provider) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := p.client.Models.GenerateContent(ctx, p.chatModel,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}, cfg)
	if err != nil {
		metrics.ObserveProviderCall(p.Name(), p.chatModel, "generate", start, 0, "api_error")
		return domain.GenerateResult{}, wrapError("generate", err)
	}

	out := responseText(resp)
	if out == "" {
		metrics.ObserveProviderCall(p.Name(), p.chatModel, "generate", start, 0, "empty_response")
		return domain.GenerateResult{}, fmt.Errorf("no response generated from chat model: %w", domain.ErrProviderError)
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	metrics.ObserveProviderCall(p.Name(), p.chatModel, "generate", start, tokens, "")
	return domain.GenerateResult{Text: out, TotalTokens: tokens}, nil
}

// HealthCheck verifies the chat model is reachable.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.chatModel, nil); err != nil {
		return fmt.Errorf("get model %s: %w", p.chatModel, err)
	}
	return nil
}

// responseText returns the text of the first candidate that has any.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

func wrapError(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini %s: API error %d: %s: %w", op, apiErr.Code, apiErr.Message, domain.ErrProviderError)
	}
	return fmt.Errorf("gemini %s: %w: %w", op, err, domain.ErrProviderError)
}
