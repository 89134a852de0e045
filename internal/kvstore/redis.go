// =============================================================================
// Settlement Report Enricher - Key-Value Store Adapter
// =============================================================================
//
// This module wraps the external Redis instance that holds transfer records.
// The enrichment engine only needs get-by-key semantics, so the adapter is
// exposed behind the small Store interface; tests substitute an in-memory
// implementation.
//
// LIFECYCLE:
//   A connection is opened once per processing run and closed (best-effort)
//   when the run ends, success or failure. Open performs a bounded Ping so
//   an unreachable store fails the run before any row is processed.
//
// =============================================================================

package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the lookup contract the enrichment engine depends on.
type Store interface {
	// Get returns the value stored under key. found is false when the key
	// does not exist; err is reserved for transport or store failures.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Close releases the underlying connection.
	Close() error
}

// =============================================================================
// REDIS IMPLEMENTATION
// =============================================================================

// RedisStore implements Store on a Redis client.
type RedisStore struct {
	client *redis.Client
}

// Open connects to the store at the given redis URL and verifies the
// connection with a ping bounded by connectTimeout. This ping is the only
// bounded wait in a run; per-key lookups rely on the server's own limits.
func Open(url string, connectTimeout time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
