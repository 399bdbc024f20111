package astrobio

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	providerName   string // gemini, openai, anthropic
	apiKey         string
	baseURL        string
	chatModel      string
	embeddingModel string
	provider       Provider

	timeout time.Duration
	rps     float64
	burst   int

	dailyBudget   int64
	monthlyBudget int64
	cacheSize     int

	corpusPath  string
	records     []Document
	redisAddr   string
	redisPass   string
	redisPrefix string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithGemini uses the Gemini API for generation and embeddings.
func WithGemini(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.providerName = "gemini"
		c.apiKey = apiKey
	})
}

// WithOpenAI uses an OpenAI-compatible API. baseURL may be empty for api.openai.com.
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.providerName = "openai"
		c.apiKey = apiKey
		c.baseURL = baseURL
	})
}

// WithAnthropic uses the Anthropic API. It has no embeddings, so search stays on keyword scoring.
func WithAnthropic(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.providerName = "anthropic"
		c.apiKey = apiKey
	})
}

// WithModels overrides the provider's default chat and embedding models.
// Empty values keep the defaults.
func WithModels(chat, embedding string) Option {
	return optionFunc(func(c *clientConfig) {
		c.chatModel = chat
		c.embeddingModel = embedding
	})
}

// WithProvider plugs in a custom AI provider. It takes precedence over
// WithGemini, WithOpenAI and WithAnthropic.
func WithProvider(p Provider) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = p
	})
}

// WithRateLimit bounds provider calls to rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rps = rps
		c.burst = burst
	})
}

// WithTokenBudget caps provider tokens per UTC day and month. A spent budget
// sends every capability to heuristic mode until the period rolls over.
// Zero leaves a period unlimited.
func WithTokenBudget(daily, monthly int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyBudget = daily
		c.monthlyBudget = monthly
	})
}

// WithEmbeddingCache keeps up to size query embeddings in memory, so repeated
// searches skip the provider.
func WithEmbeddingCache(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheSize = size
	})
}

// WithTimeout bounds every provider call. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithCorpusFile loads documents from a YAML file instead of the built-in sample corpus.
func WithCorpusFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusPath = path
	})
}

// WithRecords uses the given documents as the corpus.
func WithRecords(docs []Document) Option {
	return optionFunc(func(c *clientConfig) {
		c.records = docs
	})
}

// WithRedis reads the corpus from Redis hashes under <prefix>doc:*.
// An empty prefix defaults to "astrobio:".
func WithRedis(addr, password, prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddr = addr
		c.redisPass = password
		c.redisPrefix = prefix
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
