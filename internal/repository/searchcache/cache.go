// Package searchcache keeps recent search results keyed by search type and normalized query.
// In memory a stale entry is dropped by the read that finds it. In a shared store the
// backend's own expiry removes it, so replicas never delete each other's fresh writes.
package searchcache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nyaybodh/nyaybodh/internal/db"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/request"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
)

// DefaultTTL is how long a stored result set is served.
const DefaultTTL = 30 * time.Minute

const keyPrefix = "nyaybodh:search:"

// store is the consumer interface for a shared KV backend (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Key normalizes a query into a cache key, e.g. "entity:breach of contract".
func Key(t mode.Type, query string) string {
	return request.Key(t, query)
}

type entry struct {
	Data      result.Set `json:"data"`
	Timestamp int64      `json:"timestamp"` // epoch millis
}

// Cache stores result sets in memory, or in a KV store when one is given.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	store      store
	prefix     string
	ttl        time.Duration
	now        func() time.Time
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithStore keeps entries in a shared KV store instead of process memory.
func WithStore(s store) Option {
	return func(c *Cache) { c.store = s }
}

// WithKeyPrefix namespaces keys in the shared store.
func WithKeyPrefix(prefix string) Option {
	return func(c *Cache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithMetrics sets a counter vec with label "result" ("hit"/"miss"/"expired").
func WithMetrics(cacheTotal *prometheus.CounterVec) Option {
	return func(c *Cache) { c.cacheTotal = cacheTotal }
}

// New creates an empty cache.
func New(logger *zap.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		entries: make(map[string]entry),
		prefix:  keyPrefix,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TTL returns the configured expiry window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the stored result set iff it is younger than the TTL.
// A stale entry is removed as a side effect.
func (c *Cache) Get(ctx context.Context, key string) (result.Set, bool) {
	e, ok := c.load(ctx, key)
	if !ok {
		c.inc("miss")
		return result.Set{}, false
	}
	if c.now().Sub(time.UnixMilli(e.Timestamp)) >= c.ttl {
		c.inc("expired")
		c.remove(key, e.Timestamp)
		return result.Set{}, false
	}
	c.inc("hit")
	return e.Data, true
}

// Put inserts or overwrites an entry stamped with the current time.
func (c *Cache) Put(ctx context.Context, key string, data result.Set) {
	e := entry{Data: data, Timestamp: c.now().UnixMilli()}

	if c.store == nil {
		c.mu.Lock()
		c.entries[key] = e
		c.mu.Unlock()
		return
	}

	raw, err := json.Marshal(e)
	if err != nil {
		c.logger.Warn("Failed to encode search cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, c.prefix+key, raw, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search results", zap.String("key", key), zap.Error(err))
	}
}

// Clear drops every entry and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	if c.store == nil {
		c.mu.Lock()
		n := len(c.entries)
		c.entries = make(map[string]entry)
		c.mu.Unlock()
		return n, nil
	}

	keys, err := c.store.Keys(ctx, c.prefix+"*")
	if err != nil {
		return 0, err //nolint:wrapcheck // db.Error already carries the op
	}
	return c.store.Del(ctx, keys...) //nolint:wrapcheck // db.Error already carries the op
}

func (c *Cache) load(ctx context.Context, key string) (entry, bool) {
	if c.store == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		e, ok := c.entries[key]
		return e, ok
	}

	raw, err := c.store.Get(ctx, c.prefix+key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search results", zap.String("key", key), zap.Error(err))
		}
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.Warn("Failed to parse cached search results", zap.String("key", key), zap.Error(err))
		return entry{}, false
	}
	return e, true
}

// remove drops a stale in-memory entry unless it was overwritten after the read.
// Shared-store entries carry the TTL given to SetWithTTL and are left to expire there:
// an unconditional Del could hit a value another replica stored in between.
func (c *Cache) remove(key string, stamp int64) {
	if c.store != nil {
		return
	}
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.Timestamp == stamp {
		delete(c.entries, key)
	}
	c.mu.Unlock()
}

func (c *Cache) inc(outcome string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(outcome).Inc()
	}
}
