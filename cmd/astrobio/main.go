package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/astrobio/internal/app"
	"github.com/kailas-cloud/astrobio/internal/config"
	logpkg "github.com/kailas-cloud/astrobio/internal/logger"
	"github.com/kailas-cloud/astrobio/internal/metrics"
	chiTransport "github.com/kailas-cloud/astrobio/internal/transport/chi"
	"github.com/kailas-cloud/astrobio/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(logpkg.Options{
		Env:     env,
		Level:   cfg.Logging.Level,
		Service: "astrobio-api",
		Version: version.Version,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting astrobio API server",
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("corpus_source", cfg.Corpus.Source),
		zap.String("provider", cfg.Provider.Name),
		zap.Bool("provider_enabled", cfg.Provider.Enabled()),
	)

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	ctx := context.Background()
	opts := app.OptionsFromConfig(&cfg)

	loader, redisStore, err := app.NewLoader(ctx, cfg.Corpus)
	if err != nil {
		// Serve anyway: corpus-backed routes answer 503 and /health reports degraded.
		logger.Error("Corpus source unavailable", zap.Error(err))
		loader = failedLoader{err: err}
	}
	if redisStore != nil {
		defer redisStore.Close()
		opts.DB = redisStore
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Corpus.Redis.Addrs))
	}
	opts.Loader = loader

	prov, err := app.NewProvider(ctx, cfg.Provider, logger)
	if err != nil {
		logger.Fatal("Failed to create AI provider", zap.Error(err))
	}
	if prov == nil {
		logger.Warn("No AI provider credential configured, running in heuristic mode")
	} else {
		opts.Provider = prov
		logger.Info("AI provider configured",
			zap.String("provider", prov.Name()),
			zap.String("chat_model", cfg.Provider.ChatModel),
			zap.String("embedding_model", cfg.Provider.EmbeddingModel),
			zap.Bool("embeddings", prov.SupportsEmbeddings()),
			zap.Int64("daily_token_budget", cfg.Provider.DailyTokenBudget),
			zap.Int("embedding_cache_size", cfg.Provider.EmbeddingCacheSize),
		)
	}

	a := app.New(ctx, opts, logger)
	defer a.Close()
	logger.Info("Corpus loaded",
		zap.Int("documents", a.Store.Len()),
		zap.Int("embedded", a.Store.Embedded()),
	)

	server := chiTransport.NewServer(chiTransport.Services{
		Summarize: a.Summarize,
		Search:    a.Search,
		Chat:      a.Chat,
		Gap:       a.Gap,
		Timeline:  a.Timeline,
		Documents: a.Documents,
		Usage:     a.Usage,
		Health:    a.Health,
	}, logger).WithDefaults(chiTransport.Defaults{
		Language:     cfg.Summary.DefaultLanguage,
		Takeaways:    cfg.Summary.Takeaways,
		GapThreshold: cfg.Gap.Threshold,
	})

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
