package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "astrobio"

// AI provider Prometheus metrics.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of AI provider requests",
		},
		[]string{"provider", "model", "operation", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "AI provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model", "operation"},
	)

	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_tokens_total",
			Help:      "Total AI provider tokens consumed",
		},
		[]string{"provider", "model", "operation"},
	)

	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total AI provider errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	ProviderRateLimitWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_rate_limit_wait_seconds",
			Help:      "Time spent waiting for the provider rate limiter",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"provider"},
	)

	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Requests served in heuristic mode after an AI attempt or without a provider",
		},
		[]string{"capability", "reason"}, // reason: "unconfigured" / "unsupported" / "provider_error"
	)

	ProviderBudgetUsed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_budget_used_tokens",
			Help:      "Provider tokens consumed in the current budget period",
		},
		[]string{"provider", "period"}, // period: "day" / "month"
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Query embedding cache lookups",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CorpusDocuments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_documents",
			Help:      "Documents loaded into the corpus",
		},
		[]string{"state"}, // "total" / "embedded"
	)
)

var providerMetricsRegistered bool

// RegisterProviderMetrics registers provider, fallback and corpus metrics. Must be called once from main.
func RegisterProviderMetrics() {
	if providerMetricsRegistered {
		return
	}
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderTokensTotal)
	prometheus.MustRegister(ProviderErrorsTotal)
	prometheus.MustRegister(ProviderRateLimitWait)
	prometheus.MustRegister(FallbacksTotal)
	prometheus.MustRegister(ProviderBudgetUsed)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(CorpusDocuments)
	providerMetricsRegistered = true
}

// ObserveProviderCall records the outcome of a single provider API call.
// errType is ignored on success.
func ObserveProviderCall(provider, model, operation string, start time.Time, tokens int, errType string) {
	if errType != "" {
		ProviderRequestsTotal.WithLabelValues(provider, model, operation, "error").Inc()
		ProviderErrorsTotal.WithLabelValues(provider, model, errType).Inc()
		return
	}
	ProviderRequestsTotal.WithLabelValues(provider, model, operation, "success").Inc()
	ProviderRequestDuration.WithLabelValues(provider, model, operation).Observe(time.Since(start).Seconds())
	if tokens > 0 {
		ProviderTokensTotal.WithLabelValues(provider, model, operation).Add(float64(tokens))
	}
}

// SetCorpusDocuments publishes the loaded and embedded document counts.
func SetCorpusDocuments(total, embedded int) {
	CorpusDocuments.WithLabelValues("total").Set(float64(total))
	CorpusDocuments.WithLabelValues("embedded").Set(float64(embedded))
}
