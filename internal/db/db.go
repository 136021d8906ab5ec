// Package db defines the shared key-value store the search cache runs on
// when several processes should see the same results.
package db

import (
	"context"
	"time"
)

// Store is a Redis or Valkey compatible key-value store.
type Store interface {
	Ping(ctx context.Context) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error

	Get(ctx context.Context, key string) ([]byte, error)
	// SetWithTTL stores value under key. A non-positive ttl keeps it until deleted.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Del removes keys and reports how many existed.
	Del(ctx context.Context, keys ...string) (int, error)
	// Keys lists keys matching a glob pattern without blocking the server.
	Keys(ctx context.Context, pattern string) ([]string, error)
}
