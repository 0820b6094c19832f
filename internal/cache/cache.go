// Package cache provides a keyed memoization layer with per-entry TTL
// and single-flight semantics: at most one computation runs per key at
// a time, while distinct keys proceed independently. Entries expire
// lazily on access; StartSweeper adds an optional background sweep for
// memory bounding.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache memoizes expensive computations per key. The zero value is not
// usable; construct with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
	}
}

// GetOrCompute returns the cached value for key, or runs fn to produce
// it. Concurrent callers for the same uncached key share one in-flight
// computation; every caller receives the same value or error. Errors
// are never cached.
//
// The computation runs detached from any single caller's context: if
// ctx expires while waiting, GetOrCompute returns ctx.Err() but the
// shared computation continues and may still populate the cache for
// later callers.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) (any, error)) (any, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// A concurrent flight may have stored a fresh value between our
		// miss and this flight starting.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.store(key, v, ttl)
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get is a typed wrapper around (*Cache).GetOrCompute.
func Get[V any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(context.Context) (V, error)) (V, error) {
	v, err := c.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Invalidate drops the entry for key, if any.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweeper removes expired entries every interval until ctx is
// done. Purely a memory bound; correctness does not depend on it.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.sweep(time.Now()); n > 0 {
					logger.Debug("swept expired cache entries", "count", n)
				}
			}
		}
	}()
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *Cache) sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
