package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/astrobio/internal/config"
	dbRedis "github.com/kailas-cloud/astrobio/internal/db/redis"
	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/repository/corpus"
	anthropicProvider "github.com/kailas-cloud/astrobio/internal/transport/anthropic"
	geminiProvider "github.com/kailas-cloud/astrobio/internal/transport/gemini"
	openaiProvider "github.com/kailas-cloud/astrobio/internal/transport/openai"
	"github.com/kailas-cloud/astrobio/internal/usecase/provider"
)

// NewProvider builds the raw provider named in cfg. It returns (nil, nil)
// when no credential is configured.
func NewProvider(ctx context.Context, cfg config.ProviderConfig, logger *zap.Logger) (domain.Provider, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	switch cfg.Name {
	case config.ProviderGemini:
		p, err := geminiProvider.New(ctx, &geminiProvider.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			ChatModel:      cfg.ChatModel,
			EmbeddingModel: cfg.EmbeddingModel,
			Dimensions:     cfg.Dimensions,
			Temperature:    cfg.Temperature,
			Logger:         logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini provider: %w", err)
		}
		return p, nil
	case config.ProviderOpenAI:
		return openaiProvider.New(&openaiProvider.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			ChatModel:      cfg.ChatModel,
			EmbeddingModel: cfg.EmbeddingModel,
			Dimensions:     cfg.Dimensions,
			Temperature:    cfg.Temperature,
			MaxTokens:      cfg.MaxTokens,
			Logger:         logger,
		}), nil
	case config.ProviderAnthropic:
		p, err := anthropicProvider.New(&anthropicProvider.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.ChatModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create anthropic provider: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}

// Limits maps provider config onto the Instrumented decorator limits.
func Limits(cfg config.ProviderConfig) provider.Limits {
	return provider.Limits{
		Timeout: cfg.Timeout(),
		RPS:     cfg.RPS,
		Burst:   cfg.Burst,
	}
}

// NewLoader returns the corpus loader selected by cfg. For the redis source it
// also returns the connected store, which the caller must close.
func NewLoader(ctx context.Context, cfg config.CorpusConfig) (corpus.Loader, *dbRedis.Store, error) {
	switch cfg.Source {
	case config.SourceBuiltin:
		return corpus.BuiltinLoader{}, nil, nil
	case config.SourceFile:
		return corpus.FileLoader{Path: cfg.Path}, nil, nil
	case config.SourceRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:       cfg.Redis.Addrs,
			Username:    cfg.Redis.Username,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			ClientName:  cfg.Redis.ClientName,
			ReplicaOnly: cfg.Redis.ReplicaOnly,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create redis store: %w", err)
		}
		timeout := time.Duration(cfg.Redis.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("redis not ready: %w", err)
		}
		return corpus.NewRedisLoader(store, cfg.Redis.KeyPrefix), store, nil
	default:
		return nil, nil, fmt.Errorf("unknown corpus source %q", cfg.Source)
	}
}

// OptionsFromConfig maps the service sections of cfg onto Options.
// Loader, Provider and DB are left for the caller.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Limits:              Limits(cfg.Provider),
		DailyTokenBudget:    cfg.Provider.DailyTokenBudget,
		MonthlyTokenBudget:  cfg.Provider.MonthlyTokenBudget,
		BudgetAction:        provider.BudgetAction(cfg.Provider.BudgetAction),
		EmbeddingCacheSize:  cfg.Provider.EmbeddingCacheSize,
		SnippetLength:       cfg.Search.SnippetLength,
		TimelineConcurrency: cfg.Timeline.Concurrency,
	}
}
