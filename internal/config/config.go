package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the astrobio API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Provider ProviderConfig `yaml:"provider"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Search   SearchConfig   `yaml:"search"`
	Summary  SummaryConfig  `yaml:"summary"`
	Gap      GapConfig      `yaml:"gap"`
	Timeline TimelineConfig `yaml:"timeline"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Provider names accepted in provider.name.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ProviderConfig holds AI provider settings. An empty APIKey disables the
// provider and every capability runs in heuristic mode.
type ProviderConfig struct {
	Name           string  `yaml:"name"`
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	ChatModel      string  `yaml:"chat_model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	Dimensions     int     `yaml:"dimensions"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSec     int     `yaml:"timeout_sec"`
	RPS            float64 `yaml:"rps"`   // 0 = unlimited
	Burst          int     `yaml:"burst"` // default: 1 when rps > 0

	DailyTokenBudget   int64  `yaml:"daily_token_budget"`   // 0 = unlimited
	MonthlyTokenBudget int64  `yaml:"monthly_token_budget"` // 0 = unlimited
	BudgetAction       string `yaml:"budget_action"`        // warn, reject (default: warn)
	EmbeddingCacheSize int    `yaml:"embedding_cache_size"` // cached query vectors, 0 = disabled
}

// Budget actions accepted in provider.budget_action.
const (
	BudgetWarn   = "warn"
	BudgetReject = "reject"
)

// HasBudget reports whether any token limit is set.
func (p ProviderConfig) HasBudget() bool {
	return p.DailyTokenBudget > 0 || p.MonthlyTokenBudget > 0
}

// Enabled reports whether a provider credential is configured.
func (p ProviderConfig) Enabled() bool { return strings.TrimSpace(p.APIKey) != "" }

// Timeout returns the per-call provider timeout.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec) * time.Second
}

// Corpus sources accepted in corpus.source.
const (
	SourceBuiltin = "builtin"
	SourceFile    = "file"
	SourceRedis   = "redis"
)

// CorpusConfig selects where documents are loaded from.
type CorpusConfig struct {
	Source string      `yaml:"source"` // builtin, file, redis (default: builtin)
	Path   string      `yaml:"path"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds read-only Redis connection settings for the corpus loader.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ClientName       string   `yaml:"client_name"`
	ReplicaOnly      bool     `yaml:"replica_only"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds search engine settings.
type SearchConfig struct {
	SnippetLength int `yaml:"snippet_length"`
}

// SummaryConfig holds summarizer settings.
type SummaryConfig struct {
	DefaultLanguage string `yaml:"default_language"`
	Takeaways       int    `yaml:"takeaways"` // 3..5
}

// GapConfig holds gap analyzer settings.
type GapConfig struct {
	Threshold int `yaml:"threshold"`
}

// TimelineConfig holds timeline aggregator settings.
type TimelineConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// AI calls run inside the write deadline.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	c.Provider.ApplyDefaults()
	c.Corpus.ApplyDefaults()

	if c.Search.SnippetLength <= 0 {
		c.Search.SnippetLength = 200
	}
	if c.Summary.DefaultLanguage == "" {
		c.Summary.DefaultLanguage = "en"
	}
	if c.Summary.Takeaways <= 0 {
		c.Summary.Takeaways = 3
	}
	if c.Gap.Threshold <= 0 {
		c.Gap.Threshold = 1
	}
	if c.Timeline.Concurrency <= 0 {
		c.Timeline.Concurrency = 4
	}
}

// ApplyDefaults fills provider models and limits. Models follow the provider name.
func (p *ProviderConfig) ApplyDefaults() {
	if p.Name == "" {
		p.Name = ProviderGemini
	}
	if p.ChatModel == "" {
		p.ChatModel = defaultChatModel(p.Name)
	}
	if p.EmbeddingModel == "" {
		p.EmbeddingModel = defaultEmbeddingModel(p.Name)
	}
	if p.Temperature == 0 {
		p.Temperature = 0.3
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = 1024
	}
	if p.TimeoutSec <= 0 {
		p.TimeoutSec = 30
	}
	if p.RPS > 0 && p.Burst <= 0 {
		p.Burst = 1
	}
	if p.BudgetAction == "" {
		p.BudgetAction = BudgetWarn
	}
}

// ApplyDefaults fills the corpus source and Redis settings.
func (c *CorpusConfig) ApplyDefaults() {
	if c.Source == "" {
		c.Source = SourceBuiltin
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "astrobio:"
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Provider.Name {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("provider.name must be one of gemini, openai, anthropic, got %q", c.Provider.Name)
	}
	if c.Provider.RPS < 0 {
		return fmt.Errorf("provider.rps must be >= 0, got %v", c.Provider.RPS)
	}
	if c.Provider.Dimensions < 0 {
		return fmt.Errorf("provider.dimensions must be >= 0, got %d", c.Provider.Dimensions)
	}
	if c.Provider.DailyTokenBudget < 0 || c.Provider.MonthlyTokenBudget < 0 {
		return fmt.Errorf("provider token budgets must be >= 0, got daily=%d monthly=%d",
			c.Provider.DailyTokenBudget, c.Provider.MonthlyTokenBudget)
	}
	switch c.Provider.BudgetAction {
	case BudgetWarn, BudgetReject:
	default:
		return fmt.Errorf("provider.budget_action must be warn or reject, got %q", c.Provider.BudgetAction)
	}
	if c.Provider.EmbeddingCacheSize < 0 {
		return fmt.Errorf("provider.embedding_cache_size must be >= 0, got %d", c.Provider.EmbeddingCacheSize)
	}

	if c.Summary.Takeaways < 3 || c.Summary.Takeaways > 5 {
		return fmt.Errorf("summary.takeaways must be between 3 and 5, got %d", c.Summary.Takeaways)
	}

	switch c.Corpus.Source {
	case SourceBuiltin:
	case SourceFile:
		if c.Corpus.Path == "" {
			return fmt.Errorf("corpus.path is required for source %q", SourceFile)
		}
	case SourceRedis:
		if len(c.Corpus.Redis.Addrs) == 0 {
			return fmt.Errorf("corpus.redis.addrs is required for source %q", SourceRedis)
		}
	default:
		return fmt.Errorf("corpus.source must be one of builtin, file, redis, got %q", c.Corpus.Source)
	}
	return nil
}

func defaultChatModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	default:
		return "gemini-1.5-flash"
	}
}

func defaultEmbeddingModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "text-embedding-3-small"
	case ProviderAnthropic:
		return ""
	default:
		return "text-embedding-004"
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests run from package directories.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
