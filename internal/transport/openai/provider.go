package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/metrics"
)

// Compile-time checks.
var (
	_ domain.Provider      = (*Provider)(nil)
	_ domain.BatchEmbedder = (*Provider)(nil)
	_ domain.HealthChecker = (*Provider)(nil)
)

// Provider is an AI provider using the OpenAI-compatible API (OpenAI, Nebius, local gateways).
type Provider struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	dimensions     int
	temperature    float32
	maxTokens      int
	user           string
	name           string
	logger         *zap.Logger
}

// Config holds the provider settings. An empty EmbeddingModel disables embeddings.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Dimensions     int
	Temperature    float32
	MaxTokens      int
	User           string
	Name           string
	Logger         *zap.Logger
}

// New creates an OpenAI-compatible provider.
func New(cfg *Config) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	name := cfg.Name
	if name == "" {
		name = "openai"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		client:         openai.NewClientWithConfig(clientCfg),
		chatModel:      cfg.ChatModel,
		embeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		dimensions:     cfg.Dimensions,
		temperature:    cfg.Temperature,
		maxTokens:      cfg.MaxTokens,
		user:           cfg.User,
		name:           name,
		logger:         logger,
	}
}

// Name returns the provider label used in metrics and logs.
func (p *Provider) Name() string { return p.name }

// SupportsEmbeddings reports whether an embedding model is configured.
func (p *Provider) SupportsEmbeddings() bool { return p.embeddingModel != "" }

// Embed implements domain.Embedder.
func (p *Provider) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := p.createEmbeddings(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed implements domain.BatchEmbedder. Vectors are returned in input order.
func (p *Provider) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return p.createEmbeddings(ctx, texts)
}

func (p *Provider) createEmbeddings(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	model := string(p.embeddingModel)
	if model == "" {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("openai embeddings: %w", domain.ErrCapabilityNotSupported)
	}

	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          p.embeddingModel,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           p.user,
	}
	if p.dimensions > 0 {
		req.Dimensions = p.dimensions
	}

	start := time.Now()
	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		metrics.ObserveProviderCall(p.name, model, "embed", start, 0, "api_error")
		return domain.BatchEmbeddingResult{}, parseAPIError(err)
	}
	if len(resp.Data) != len(texts) {
		metrics.ObserveProviderCall(p.name, model, "embed", start, 0, "count_mismatch")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(texts), len(resp.Data), domain.ErrProviderError)
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	embeddings := make([][]float32, len(resp.Data))
	for i := range resp.Data {
		embeddings[i] = resp.Data[i].Embedding
	}

	metrics.ObserveProviderCall(p.name, model, "embed", start, resp.Usage.TotalTokens, "")
	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// Generate implements domain.Generator via the chat completions API.
func (p *Provider) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chatReq := openai.ChatCompletionRequest{
		Model:       p.chatModel,
		Messages:    messages,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		User:        p.user,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		metrics.ObserveProviderCall(p.name, p.chatModel, "generate", start, 0, "api_error")
		return domain.GenerateResult{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.ObserveProviderCall(p.name, p.chatModel, "generate", start, 0, "empty_response")
		return domain.GenerateResult{}, fmt.Errorf("empty completion response: %w", domain.ErrProviderError)
	}

	metrics.ObserveProviderCall(p.name, p.chatModel, "generate", start, resp.Usage.TotalTokens, "")
	return domain.GenerateResult{
		Text:        resp.Choices[0].Message.Content,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrProviderError.
func parseAPIError(err error) error {
	wrap := domain.ErrProviderError

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai request: %w: %w", err, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("openai API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("openai request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
