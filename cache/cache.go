// Package cache provides a small TTL cache with an explicit fetch-through
// API: callers pass (key, ttl, fetcher) and get back the value, whether it
// came from cache, and when it was produced. Instances are injected by the
// owner; there are no package-level singletons.
package cache

import (
	"context"
	"sync"
	"time"
)

// Fetcher produces the value for a key on a cache miss.
type Fetcher[V any] func(ctx context.Context) (V, error)

// Result carries a cache lookup outcome.
type Result[V any] struct {
	Value V
	// FromCache is false when the fetcher ran for this call.
	FromCache bool
	// Timestamp is when the value was produced by its fetcher.
	Timestamp time.Time
}

type entry[V any] struct {
	value      V
	producedAt time.Time
	expiresAt  time.Time
	accessedAt time.Time
}

// Cache is a bounded in-memory TTL cache. The zero value is not usable; use
// New.
type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[string]*entry[V]
	maxEntries int
	now        func() time.Time
}

// DefaultMaxEntries bounds a cache built by New.
const DefaultMaxEntries = 1000

// New creates a cache holding at most maxEntries values; maxEntries <= 0
// means DefaultMaxEntries.
func New[V any](maxEntries int) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache[V]{
		entries:    make(map[string]*entry[V]),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached value for key if fresh, otherwise runs fetch,
// stores the result for ttl, and returns it. Fetch errors are returned
// without caching, so a failing fetcher is retried on the next call.
func (c *Cache[V]) Get(ctx context.Context, key string, ttl time.Duration, fetch Fetcher[V]) (Result[V], error) {
	now := c.now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && now.Before(e.expiresAt) {
		e.accessedAt = now
		result := Result[V]{Value: e.value, FromCache: true, Timestamp: e.producedAt}
		c.mu.Unlock()
		return result, nil
	}
	c.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil {
		return Result[V]{}, err
	}

	c.mu.Lock()
	c.entries[key] = &entry[V]{value: value, producedAt: now, expiresAt: now.Add(ttl), accessedAt: now}
	if len(c.entries) > c.maxEntries {
		c.evict(now)
	}
	c.mu.Unlock()

	return Result[V]{Value: value, FromCache: false, Timestamp: now}, nil
}

// Invalidate drops the entry for key, if any.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]*entry[V])
	c.mu.Unlock()
}

// evict removes expired entries, then least-recently-accessed ones until the
// cache is back under its bound. Caller holds the lock.
func (c *Cache[V]) evict(now time.Time) {
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for key, e := range c.entries {
			if oldestKey == "" || e.accessedAt.Before(oldest) {
				oldestKey = key
				oldest = e.accessedAt
			}
		}
		delete(c.entries, oldestKey)
	}
}

// Stats reports entry counts for observability.
type Stats struct {
	Entries int
	Expired int
}

// Stats returns current entry counts.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Entries: len(c.entries)}
	now := c.now()
	for _, e := range c.entries {
		if !now.Before(e.expiresAt) {
			s.Expired++
		}
	}
	return s
}
