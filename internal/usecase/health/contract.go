package health

import "context"

// CorpusChecker reports whether the corpus loaded successfully.
type CorpusChecker interface {
	Err() error
	Len() int
}

// DBPinger checks availability of the store the corpus was read from.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks AI provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
