// Package cache provides an in-process expiring cache with get-or-create
// semantics.
//
// Entries expire a fixed duration after they were created (absolute
// expiration); reads never extend an entry's lifetime. Concurrent callers
// asking for the same missing key share a single call to the create
// function, which runs detached from any one caller's cancellation; each
// caller still stops waiting when its own context is done. Errors returned by
// create are never cached.
package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/allisson/permguard/internal/metrics"
)

// Cache is a get-or-populate cache keyed by string.
type Cache[V any] interface {
	// GetOrCreate returns the live value stored under key. On a miss it calls
	// create, stores the result and returns it.
	GetOrCreate(ctx context.Context, key string, create func(ctx context.Context) (V, error)) (V, error)
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// ExpiringCache is a size-bounded LRU whose entries carry an absolute expiration.
type ExpiringCache[V any] struct {
	entries *lru.Cache[string, entry[V]]
	group   singleflight.Group
	ttl     time.Duration
	now     func() time.Time

	name    string
	metrics metrics.CacheMetrics
}

// Option configures an ExpiringCache.
type Option[V any] func(*ExpiringCache[V])

// WithClock replaces time.Now, mainly for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *ExpiringCache[V]) {
		c.now = now
	}
}

// WithMetrics counts GetOrCreate hits and misses under name.
func WithMetrics[V any](name string, m metrics.CacheMetrics) Option[V] {
	return func(c *ExpiringCache[V]) {
		c.name = name
		c.metrics = m
	}
}

// NewExpiringCache creates a cache holding at most size entries, each living for ttl.
func NewExpiringCache[V any](size int, ttl time.Duration, opts ...Option[V]) (*ExpiringCache[V], error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}

	entries, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	c := &ExpiringCache[V]{
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
		metrics: metrics.NewNoOpCacheMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetOrCreate implements Cache.
func (c *ExpiringCache[V]) GetOrCreate(
	ctx context.Context,
	key string,
	create func(ctx context.Context) (V, error),
) (V, error) {
	if value, ok := c.get(key); ok {
		c.metrics.RecordLookup(ctx, c.name, metrics.CacheHit)
		return value, nil
	}
	c.metrics.RecordLookup(ctx, c.name, metrics.CacheMiss)

	ch := c.group.DoChan(key, func() (any, error) {
		// Another caller may have stored the value between our miss and DoChan.
		if value, ok := c.get(key); ok {
			return value, nil
		}

		// The population is shared, so no single caller's cancellation may abort it.
		value, err := create(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.entries.Add(key, entry[V]{value: value, expiresAt: c.now().Add(c.ttl)})
		return value, nil
	})

	select {
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Get returns the live value stored under key, if any.
func (c *ExpiringCache[V]) Get(key string) (V, bool) {
	return c.get(key)
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *ExpiringCache[V]) Len() int {
	return c.entries.Len()
}

// Purge removes every entry.
func (c *ExpiringCache[V]) Purge() {
	c.entries.Purge()
}

func (c *ExpiringCache[V]) get(key string) (V, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	// Expired entries stay until the next Add overwrites them or the LRU evicts them.
	if !c.now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}

	return e.value, true
}
