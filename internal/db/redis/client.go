// Package redis reads corpus records from Redis through rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/astrobio/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	defaultClientName = "astrobio-corpus"
	readyPollInterval = 100 * time.Millisecond
)

// Config holds connection parameters for the corpus store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// ClientName is sent with CLIENT SETNAME; empty uses "astrobio-corpus".
	ClientName string
	// ReplicaOnly routes reads to replicas in cluster deployments.
	ReplicaOnly bool
}

// Store is a read-only rueidis-backed db.Store.
type Store struct {
	client rueidis.Client
}

// NewStore connects to Redis. Client-side caching stays off since the
// corpus is read once at startup.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis addrs is required")
	}
	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   name,
		ReplicaOnly:  cfg.ReplicaOnly,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings immediately and then every 100ms until the store answers.
// On timeout the error wraps db.ErrNotReady and the last ping failure.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = s.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w after %s: %w", db.ErrNotReady, timeout, lastErr)
		case <-ticker.C:
		}
	}
}
