// Package db defines the read-only store facade behind the redis corpus source.
package db

import (
	"context"
	"time"
)

// Store is a connected, read-only corpus store.
type Store interface {
	Pinger
	HashReader
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashReader reads study records stored as hashes.
type HashReader interface {
	// Keys returns every key starting with prefix, deduplicated and sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Hashes fetches the fields of each key in order. Keys that no longer
	// exist come back as empty maps.
	Hashes(ctx context.Context, keys []string) ([]map[string]string, error)
}
