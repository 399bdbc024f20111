package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/astrobio/internal/config"
	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/domain/budget"
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
	"github.com/kailas-cloud/astrobio/internal/domain/mode"
	"github.com/kailas-cloud/astrobio/internal/domain/search/filter"
	"github.com/kailas-cloud/astrobio/internal/domain/search/request"
	"github.com/kailas-cloud/astrobio/internal/repository/corpus"
	healthuc "github.com/kailas-cloud/astrobio/internal/usecase/health"
	"github.com/kailas-cloud/astrobio/internal/usecase/provider"
)

// --- Mocks ---

// keywordProvider embeds text as a two-dimensional bag of the words
// "microgravity" and "radiation".
type keywordProvider struct {
	embedErr   error
	embedCalls int
}

func (p *keywordProvider) Name() string             { return "mock" }
func (p *keywordProvider) SupportsEmbeddings() bool { return true }

func (p *keywordProvider) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	p.embedCalls++
	if p.embedErr != nil {
		return domain.EmbeddingResult{}, p.embedErr
	}
	lower := strings.ToLower(text)
	v := []float32{
		float32(strings.Count(lower, "microgravity")),
		float32(strings.Count(lower, "radiation")),
	}
	return domain.EmbeddingResult{Embedding: v, TotalTokens: 1}, nil
}

func (p *keywordProvider) Generate(_ context.Context, _ domain.GenerateRequest) (domain.GenerateResult, error) {
	return domain.GenerateResult{Text: "generated", TotalTokens: 1}, nil
}

type failingLoader struct{}

func (failingLoader) Load(context.Context) ([]domdoc.Document, error) {
	return nil, errors.New("source offline")
}

// --- Tests ---

func TestNew_HeuristicWithoutProvider(t *testing.T) {
	a := New(context.Background(), Options{Loader: corpus.BuiltinLoader{}}, nil)

	if a.Store.Len() != 5 || a.Store.Embedded() != 0 {
		t.Fatalf("unexpected store: len=%d embedded=%d", a.Store.Len(), a.Store.Embedded())
	}
	for _, c := range []mode.Capability{mode.Summarize, mode.Embed, mode.Generate, mode.Analyze, mode.Narrate} {
		if got := a.Selector.Select(c); got != mode.Heuristic {
			t.Errorf("%s: expected heuristic, got %s", c, got)
		}
	}
	report := a.Health.Check(context.Background())
	if report.Status != healthuc.Healthy {
		t.Errorf("expected healthy, got %+v", report)
	}
}

func TestNew_EmbedsCorpusAndSearchesSemantically(t *testing.T) {
	a := New(context.Background(), Options{Loader: corpus.BuiltinLoader{}, Provider: &keywordProvider{}}, nil)

	if a.Store.Embedded() != 5 {
		t.Fatalf("expected every document embedded, got %d", a.Store.Embedded())
	}

	req, err := request.New("radiation", filter.Filter{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := a.Search.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Mode != mode.AI {
		t.Fatalf("expected AI mode, got %s", resp.Mode)
	}
	if len(resp.Results) == 0 || resp.Results[0].ID() != "astro-5" {
		t.Errorf("expected astro-5 first, got %+v", resp.Results)
	}
}

func TestNew_EmbeddingCacheServesRepeatQueries(t *testing.T) {
	p := &keywordProvider{}
	a := New(context.Background(), Options{
		Loader:             corpus.BuiltinLoader{},
		Provider:           p,
		EmbeddingCacheSize: 64,
	}, nil)
	defer a.Close()

	req, err := request.New("radiation", filter.Filter{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	before := p.embedCalls

	for i := range 2 {
		ctx, usage := domain.NewContextWithUsage(context.Background())
		resp, err := a.Search.Search(ctx, &req)
		if err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
		if resp.Mode != mode.AI {
			t.Fatalf("search %d: expected AI mode, got %s", i, resp.Mode)
		}
		calls, _, _ := usage.Snapshot()
		if want := 1 - i; calls != want {
			t.Errorf("search %d: expected %d provider calls, got %d", i, want, calls)
		}
	}
	if got := p.embedCalls - before; got != 1 {
		t.Errorf("expected the repeated query embedded once, got %d calls", got)
	}
}

func TestNew_TokenBudgetForcesHeuristic(t *testing.T) {
	a := New(context.Background(), Options{
		Loader:           corpus.BuiltinLoader{},
		Provider:         &keywordProvider{},
		DailyTokenBudget: 5,
		BudgetAction:     provider.BudgetActionReject,
	}, nil)

	if a.Store.Embedded() != 5 {
		t.Fatalf("expected corpus embedded within budget, got %d", a.Store.Embedded())
	}

	report := a.Usage.Report(context.Background(), budget.PeriodDay)
	if report.TokensUsed() != 5 || !report.Exhausted() {
		t.Fatalf("expected exhausted budget after indexing, got used=%d exhausted=%v",
			report.TokensUsed(), report.Exhausted())
	}
	if report.Provider() != "mock" {
		t.Errorf("expected provider mock, got %q", report.Provider())
	}

	req, err := request.New("radiation", filter.Filter{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx, usage := domain.NewContextWithUsage(context.Background())
	resp, err := a.Search.Search(ctx, &req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Mode != mode.Heuristic {
		t.Errorf("expected heuristic mode once budget is spent, got %s", resp.Mode)
	}
	if _, _, fallbacks := usage.Snapshot(); fallbacks != 1 {
		t.Errorf("expected one fallback, got %d", fallbacks)
	}
}

func TestNew_UsageWithoutBudget(t *testing.T) {
	a := New(context.Background(), Options{Loader: corpus.BuiltinLoader{}}, nil)

	report := a.Usage.Report(context.Background(), budget.PeriodMonth)
	if report.Remaining() != -1 || report.Exhausted() {
		t.Errorf("expected unlimited report, got remaining=%d", report.Remaining())
	}
}

func TestNew_EmbeddingFailureKeepsKeywordSearch(t *testing.T) {
	p := &keywordProvider{embedErr: errors.New("quota")}
	a := New(context.Background(), Options{Loader: corpus.BuiltinLoader{}, Provider: p}, nil)

	if a.Store.Embedded() != 0 {
		t.Fatalf("expected no embeddings, got %d", a.Store.Embedded())
	}
	if a.Store.Err() != nil {
		t.Fatalf("store must stay usable: %v", a.Store.Err())
	}
}

func TestNew_CorpusUnavailable(t *testing.T) {
	a := New(context.Background(), Options{Loader: failingLoader{}}, nil)

	if !errors.Is(a.Store.Err(), domain.ErrCorpusUnavailable) {
		t.Fatalf("expected ErrCorpusUnavailable, got %v", a.Store.Err())
	}
	if _, err := a.Documents.Stats(context.Background()); !errors.Is(err, domain.ErrCorpusUnavailable) {
		t.Errorf("expected ErrCorpusUnavailable from stats, got %v", err)
	}
	if a.Health.Check(context.Background()).Status != healthuc.Degraded {
		t.Error("expected degraded health")
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), config.ProviderConfig{Name: config.ProviderGemini}, nil)
	if err != nil || p != nil {
		t.Fatalf("expected (nil, nil) without api key, got (%v, %v)", p, err)
	}

	p, err = NewProvider(context.Background(), config.ProviderConfig{
		Name: config.ProviderOpenAI, APIKey: "sk-test", ChatModel: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small",
	}, nil)
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if p.Name() != "openai" || !p.SupportsEmbeddings() {
		t.Errorf("unexpected openai provider %s", p.Name())
	}

	p, err = NewProvider(context.Background(), config.ProviderConfig{
		Name: config.ProviderAnthropic, APIKey: "sk-ant", ChatModel: "claude-3-5-haiku-latest",
	}, nil)
	if err != nil {
		t.Fatalf("anthropic: %v", err)
	}
	if p.SupportsEmbeddings() {
		t.Error("anthropic must not support embeddings")
	}

	if _, err := NewProvider(context.Background(), config.ProviderConfig{Name: "cohere", APIKey: "x"}, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewLoader(t *testing.T) {
	l, db, err := NewLoader(context.Background(), config.CorpusConfig{Source: config.SourceBuiltin})
	if err != nil || db != nil {
		t.Fatalf("builtin: (%v, %v)", db, err)
	}
	if _, ok := l.(corpus.BuiltinLoader); !ok {
		t.Errorf("expected BuiltinLoader, got %T", l)
	}

	l, _, err = NewLoader(context.Background(), config.CorpusConfig{Source: config.SourceFile, Path: "/tmp/x.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if fl, ok := l.(corpus.FileLoader); !ok || fl.Path != "/tmp/x.yaml" {
		t.Errorf("unexpected file loader %#v", l)
	}

	if _, _, err := NewLoader(context.Background(), config.CorpusConfig{Source: "s3"}); err == nil {
		t.Error("expected error for unknown source")
	}
}
