// Package app assembles the corpus, the mode selector and the use case
// services. Both the HTTP server and the SDK build on it.
package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/metrics"
	"github.com/kailas-cloud/astrobio/internal/repository/corpus"
	"github.com/kailas-cloud/astrobio/internal/repository/embcache"
	chatuc "github.com/kailas-cloud/astrobio/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/astrobio/internal/usecase/document"
	gapuc "github.com/kailas-cloud/astrobio/internal/usecase/gap"
	healthuc "github.com/kailas-cloud/astrobio/internal/usecase/health"
	indexuc "github.com/kailas-cloud/astrobio/internal/usecase/index"
	"github.com/kailas-cloud/astrobio/internal/usecase/provider"
	searchuc "github.com/kailas-cloud/astrobio/internal/usecase/search"
	"github.com/kailas-cloud/astrobio/internal/usecase/selector"
	summarizeuc "github.com/kailas-cloud/astrobio/internal/usecase/summarize"
	timelineuc "github.com/kailas-cloud/astrobio/internal/usecase/timeline"
	usageuc "github.com/kailas-cloud/astrobio/internal/usecase/usage"
)

// Options are the collaborators and tunables of an App.
type Options struct {
	Loader corpus.Loader
	// Provider is the raw AI provider. Nil runs every capability in heuristic mode.
	Provider domain.Provider
	Limits   provider.Limits
	// DB is the store the corpus was read from, checked by health. Optional.
	DB healthuc.DBPinger

	// DailyTokenBudget and MonthlyTokenBudget cap provider tokens. Zero is unlimited.
	DailyTokenBudget   int64
	MonthlyTokenBudget int64
	BudgetAction       provider.BudgetAction
	// EmbeddingCacheSize bounds the query embedding cache. Zero disables it.
	EmbeddingCacheSize int

	SnippetLength       int
	TimelineConcurrency int
	DefaultPageSize     int
	MaxPageSize         int
}

// App holds the wired services.
type App struct {
	Store    *corpus.Store
	Selector *selector.Selector

	Summarize *summarizeuc.Service
	Search    *searchuc.Service
	Chat      *chatuc.Service
	Gap       *gapuc.Service
	Timeline  *timelineuc.Service
	Documents *documentuc.Service
	Health    *healthuc.Service
	Usage     *usageuc.Service

	cache *embcache.Memory
}

// New loads the corpus and wires every service. A corpus that fails to load
// does not fail New: the services answer with domain.ErrCorpusUnavailable and
// health reports degraded.
func New(ctx context.Context, opts Options, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := corpus.Load(ctx, opts.Loader)
	if err != nil {
		logger.Error("Corpus unavailable", zap.Error(err))
		store = corpus.Unavailable(err)
	}

	// Interfaces stay nil (not typed nil pointers) when no provider is configured.
	var (
		ai      selector.AI
		checker healthuc.ProviderChecker
		budgets usageuc.Counters
		adapter *provider.Adapter
		cache   *embcache.Memory
	)
	if opts.Provider != nil {
		inst := provider.NewInstrumented(opts.Provider, opts.Limits, logger)
		if opts.DailyTokenBudget > 0 || opts.MonthlyTokenBudget > 0 {
			b := provider.NewBudget(opts.Provider.Name(), opts.DailyTokenBudget, opts.MonthlyTokenBudget,
				opts.BudgetAction, logger)
			inst = inst.WithBudget(b)
			budgets = b
		}
		var raw domain.Provider = inst
		if opts.EmbeddingCacheSize > 0 {
			mem, err := embcache.NewMemory(int64(opts.EmbeddingCacheSize))
			if err != nil {
				logger.Warn("Embedding cache disabled", zap.Error(err))
			} else {
				cache = mem
				raw = embcache.New(inst, mem, logger)
			}
		}
		adapter = provider.NewAdapter(raw)
		ai = adapter
		checker = inst
	}
	sel := selector.New(ai, logger)

	if adapter != nil && store.Err() == nil {
		store = attachEmbeddings(ctx, store, indexuc.New(adapter, logger), logger)
	}
	metrics.SetCorpusDocuments(store.Len(), store.Embedded())

	searchSvc := searchuc.New(store, sel)
	if opts.SnippetLength > 0 {
		searchSvc = searchSvc.WithSnippetLength(opts.SnippetLength)
	}
	timelineSvc := timelineuc.New(store, sel)
	if opts.TimelineConcurrency > 0 {
		timelineSvc = timelineSvc.WithConcurrency(opts.TimelineConcurrency)
	}
	docSvc := documentuc.New(store)
	if opts.DefaultPageSize > 0 || opts.MaxPageSize > 0 {
		docSvc = docSvc.WithPagination(opts.DefaultPageSize, opts.MaxPageSize)
	}

	return &App{
		Store:     store,
		Selector:  sel,
		Summarize: summarizeuc.New(sel),
		Search:    searchSvc,
		Chat:      chatuc.New(store, sel),
		Gap:       gapuc.New(store, sel),
		Timeline:  timelineSvc,
		Documents: docSvc,
		Health:    healthuc.New(store, opts.DB, checker, sel.ProviderName()),
		Usage:     usageuc.New(budgets, sel.ProviderName()),
		cache:     cache,
	}
}

// Close releases the embedding cache.
func (a *App) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// attachEmbeddings embeds the corpus once. Any failure keeps the store without
// embeddings, so search stays on keyword scoring.
func attachEmbeddings(ctx context.Context, store *corpus.Store, idx *indexuc.Service, logger *zap.Logger) *corpus.Store {
	docs, err := store.All()
	if err != nil {
		return store
	}
	vecs, err := idx.Vectors(ctx, docs)
	if err != nil {
		logger.Warn("Corpus embedding failed, semantic search disabled", zap.Error(err))
		return store
	}
	if vecs == nil {
		return store
	}
	embedded, err := store.WithEmbeddings(vecs)
	if err != nil {
		logger.Warn("Corpus embedding rejected, semantic search disabled", zap.Error(err))
		return store
	}
	return embedded
}
