package astrobio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/astrobio/internal/app"
	"github.com/kailas-cloud/astrobio/internal/config"
	dbRedis "github.com/kailas-cloud/astrobio/internal/db/redis"
	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/domain/budget"
	domchat "github.com/kailas-cloud/astrobio/internal/domain/chat"
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
	domgap "github.com/kailas-cloud/astrobio/internal/domain/gap"
	"github.com/kailas-cloud/astrobio/internal/domain/mode"
	"github.com/kailas-cloud/astrobio/internal/domain/search/filter"
	"github.com/kailas-cloud/astrobio/internal/domain/search/request"
	"github.com/kailas-cloud/astrobio/internal/domain/summary"
	domtl "github.com/kailas-cloud/astrobio/internal/domain/timeline"
	"github.com/kailas-cloud/astrobio/internal/repository/corpus"
	chatuc "github.com/kailas-cloud/astrobio/internal/usecase/chat"
	"github.com/kailas-cloud/astrobio/internal/usecase/provider"
	searchuc "github.com/kailas-cloud/astrobio/internal/usecase/search"
)

// Internal interfaces for substitution in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Response, error)
}

type summarizeUseCase interface {
	Summarize(ctx context.Context, req summary.Request) (summary.Summary, mode.Mode, error)
}

type chatUseCase interface {
	Reply(ctx context.Context, req chatuc.Request) (string, mode.Mode, error)
}

type gapUseCase interface {
	Analyze(ctx context.Context, req domgap.Request) (domgap.Report, error)
}

type timelineUseCase interface {
	Build(ctx context.Context) (domtl.Timeline, error)
}

type usageUseCase interface {
	Report(ctx context.Context, period budget.Period) budget.Report
}

type documentUseCase interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context, f filter.Filter, cursor string, limit int) ([]domdoc.Document, string, error)
	Stats(ctx context.Context) (domdoc.Stats, error)
}

// Client is the astrobio SDK entry point.
type Client struct {
	redis        *dbRedis.Store
	searchSvc    searchUseCase
	summarizeSvc summarizeUseCase
	chatSvc      chatUseCase
	gapSvc       gapUseCase
	timelineSvc  timelineUseCase
	docSvc       documentUseCase
	healthSvc    healthUseCase
	usageSvc     usageUseCase
	release      func()
	providerName string
	obs          *observer
}

// New creates a Client and loads the corpus. Without a corpus option the
// built-in sample corpus is used; without a provider option every call runs
// in heuristic mode. The context bounds corpus loading and embedding.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	loader, redis, err := createLoader(ctx, cfg)
	if err != nil {
		return nil, err
	}

	prov, err := createProvider(ctx, cfg)
	if err != nil {
		closeStore(redis)
		return nil, err
	}

	appOpts := app.Options{
		Loader:   loader,
		Provider: prov,
		Limits:   provider.Limits{Timeout: cfg.timeout, RPS: cfg.rps, Burst: cfg.burst},

		DailyTokenBudget:   cfg.dailyBudget,
		MonthlyTokenBudget: cfg.monthlyBudget,
		BudgetAction:       provider.BudgetActionReject,
		EmbeddingCacheSize: cfg.cacheSize,
	}
	if redis != nil {
		appOpts.DB = redis
	}

	start := time.Now()
	a := app.New(ctx, appOpts, zap.NewNop())
	if err := a.Store.Err(); err != nil {
		obs.observe("load", start, nil, err)
		a.Close()
		closeStore(redis)
		return nil, fmt.Errorf("astrobio: load corpus: %w", err)
	}
	obs.observe("load", start, nil, nil)

	return &Client{
		redis:        redis,
		searchSvc:    a.Search,
		summarizeSvc: a.Summarize,
		chatSvc:      a.Chat,
		gapSvc:       a.Gap,
		timelineSvc:  a.Timeline,
		docSvc:       a.Documents,
		healthSvc:    a.Health,
		usageSvc:     a.Usage,
		release:      a.Close,
		providerName: a.Selector.ProviderName(),
		obs:          obs,
	}, nil
}

func createLoader(ctx context.Context, cfg *clientConfig) (corpus.Loader, *dbRedis.Store, error) {
	switch {
	case cfg.records != nil:
		return corpus.RecordsLoader(toRecords(cfg.records)), nil, nil
	case cfg.corpusPath != "":
		return corpus.FileLoader{Path: cfg.corpusPath}, nil, nil
	case cfg.redisAddr != "":
		cc := config.CorpusConfig{
			Source: config.SourceRedis,
			Redis: config.RedisConfig{
				Addrs:     []string{cfg.redisAddr},
				Password:  cfg.redisPass,
				KeyPrefix: cfg.redisPrefix,
			},
		}
		cc.ApplyDefaults()
		loader, store, err := app.NewLoader(ctx, cc)
		if err != nil {
			return nil, nil, fmt.Errorf("astrobio: %w", err)
		}
		return loader, store, nil
	default:
		return corpus.BuiltinLoader{}, nil, nil
	}
}

// createProvider returns a nil interface when no provider is configured.
func createProvider(ctx context.Context, cfg *clientConfig) (domain.Provider, error) {
	if cfg.provider != nil {
		return &providerAdapter{inner: cfg.provider}, nil
	}
	if cfg.providerName == "" {
		return nil, nil
	}
	if cfg.apiKey == "" {
		return nil, errors.New("astrobio: provider api key is empty")
	}

	pc := config.ProviderConfig{
		Name:           cfg.providerName,
		APIKey:         cfg.apiKey,
		BaseURL:        cfg.baseURL,
		ChatModel:      cfg.chatModel,
		EmbeddingModel: cfg.embeddingModel,
	}
	pc.ApplyDefaults()
	p, err := app.NewProvider(ctx, pc, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("astrobio: %w", err)
	}
	return p, nil
}

func closeStore(s *dbRedis.Store) {
	if s != nil {
		s.Close()
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.release != nil {
		c.release()
	}
	closeStore(c.redis)
}

// ProviderName returns the configured AI provider, or "" in heuristic-only mode.
func (c *Client) ProviderName() string { return c.providerName }

func toRecords(docs []Document) []corpus.Record {
	out := make([]corpus.Record, len(docs))
	for i, d := range docs {
		out[i] = corpus.Record{
			ID:        d.ID,
			Title:     d.Title,
			Abstract:  d.Abstract,
			Organism:  d.Organism,
			Mission:   d.Mission,
			Year:      d.Year,
			Tags:      d.Tags,
			Embedding: d.Embedding,
		}
	}
	return out
}

func fromInternalDocument(d *domdoc.Document) Document {
	return Document{
		ID:        d.ID(),
		Title:     d.Title(),
		Abstract:  d.Abstract(),
		Organism:  d.Organism(),
		Mission:   d.Mission(),
		Year:      d.Year(),
		Tags:      d.Tags(),
		Embedding: d.Embedding(),
	}
}

func toInternalFilter(f Filter) (filter.Filter, error) {
	var year *int
	if f.Year != 0 {
		y := f.Year
		year = &y
	}
	out, err := filter.New(f.Organism, f.Mission, year)
	if err != nil {
		return filter.Filter{}, validation(err)
	}
	return out, nil
}

func toConversation(msgs []ChatMessage) (domchat.Conversation, error) {
	turns := make([]domchat.Turn, 0, len(msgs))
	for i, m := range msgs {
		t, err := domchat.NewTurn(domchat.Role(m.Role), m.Content)
		if err != nil {
			return domchat.Conversation{}, validation(fmt.Errorf("message %d: %w", i, err))
		}
		turns = append(turns, t)
	}
	conv, err := domchat.NewConversation(turns)
	if err != nil {
		return domchat.Conversation{}, validation(err)
	}
	return conv, nil
}

// validation marks a request construction error as ErrValidation.
func validation(err error) error {
	if errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrValidation, err)
}
