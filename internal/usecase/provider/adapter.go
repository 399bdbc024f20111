package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/domain/summary"
)

// MaxTags caps the topical tags kept from an AI summary.
const MaxTags = 6

const summarySchema = `{
  "type": "object",
  "required": ["abstract", "key_takeaways", "ai_tags"],
  "properties": {
    "abstract": {"type": "string", "minLength": 1},
    "key_takeaways": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "minLength": 1}
    },
    "ai_tags": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

var summaryLoader = gojsonschema.NewStringLoader(summarySchema)

type summaryPayload struct {
	Abstract     string   `json:"abstract"`
	KeyTakeaways []string `json:"key_takeaways"`
	AITags       []string `json:"ai_tags"`
}

// Adapter exposes the capability-level AI contract (summarize, embed, generate)
// on top of a raw provider. It records token usage on the request context.
type Adapter struct {
	provider domain.Provider
}

// NewAdapter wraps a provider. The provider is usually an *Instrumented.
func NewAdapter(p domain.Provider) *Adapter {
	return &Adapter{provider: p}
}

// Name returns the provider name.
func (a *Adapter) Name() string { return a.provider.Name() }

// SupportsEmbeddings reports whether the provider can embed text.
func (a *Adapter) SupportsEmbeddings() bool { return a.provider.SupportsEmbeddings() }

// Embed returns the embedding vector for text.
func (a *Adapter) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := a.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if !res.Cached {
		domain.UsageFromContext(ctx).AddCall(res.TotalTokens)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("embed: empty vector: %w", domain.ErrProviderError)
	}
	return res.Embedding, nil
}

// EmbedBatch returns one embedding per text, in input order.
func (a *Adapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var (
		res domain.BatchEmbeddingResult
		err error
	)
	if be, ok := a.provider.(domain.BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
	} else {
		res, err = domain.BatchFallback(ctx, a.provider, texts)
	}
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	domain.UsageFromContext(ctx).AddCall(res.TotalTokens)
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed batch: got %d vectors for %d texts: %w",
			len(res.Embeddings), len(texts), domain.ErrProviderError)
	}
	return res.Embeddings, nil
}

// Generate returns free-form text for a prompt.
func (a *Adapter) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	res, err := a.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	domain.UsageFromContext(ctx).AddCall(res.TotalTokens)
	out := strings.TrimSpace(res.Text)
	if out == "" {
		return "", fmt.Errorf("generate: empty response: %w", domain.ErrProviderError)
	}
	return out, nil
}

// Summarize asks the provider for a JSON summary and validates its shape.
// A response that does not match the schema is a provider error.
func (a *Adapter) Summarize(ctx context.Context, req summary.Request) (summary.Summary, error) {
	raw, err := a.Generate(ctx, domain.GenerateRequest{
		System: summarizeSystem(req.Language()),
		Prompt: summarizePrompt(req.Text(), req.Takeaways()),
		JSON:   true,
	})
	if err != nil {
		return summary.Summary{}, fmt.Errorf("summarize: %w", err)
	}
	return parseSummary(raw, req.Takeaways())
}

func parseSummary(raw string, takeaways int) (summary.Summary, error) {
	body := stripCodeFence(raw)

	result, err := gojsonschema.Validate(summaryLoader, gojsonschema.NewStringLoader(body))
	if err != nil {
		return summary.Summary{}, fmt.Errorf("summarize: decode response: %w: %w", domain.ErrProviderError, err)
	}
	if !result.Valid() {
		errs := result.Errors()
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.String())
		}
		return summary.Summary{}, fmt.Errorf("summarize: malformed response (%s): %w",
			strings.Join(msgs, "; "), domain.ErrProviderError)
	}

	var p summaryPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return summary.Summary{}, fmt.Errorf("summarize: decode response: %w: %w", domain.ErrProviderError, err)
	}

	out := summary.Summary{
		Abstract:     strings.TrimSpace(p.Abstract),
		KeyTakeaways: nonBlank(p.KeyTakeaways, takeaways),
		Tags:         dedupe(p.AITags, MaxTags),
	}
	if len(out.KeyTakeaways) == 0 {
		return summary.Summary{}, fmt.Errorf("summarize: no usable takeaways: %w", domain.ErrProviderError)
	}
	return out, nil
}

// stripCodeFence removes a surrounding ```json fence some models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func nonBlank(items []string, limit int) []string {
	out := make([]string, 0, min(len(items), limit))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}

func dedupe(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, min(len(items), limit))
	for _, it := range items {
		it = strings.TrimSpace(it)
		key := strings.ToLower(it)
		if it == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}
