// Package cache is a content-addressed store for generated artifacts: one
// entry per (document fingerprint, request options) pair, with TTL expiry
// and a small LRU-by-creation bound. It exists so identical requests are
// never regenerated.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCapacity bounds the number of live entries.
	DefaultCapacity = 5

	// DefaultTTL is how long an entry stays servable after creation.
	DefaultTTL = 24 * time.Hour
)

// entry values are immutable once created; overwrites replace wholesale.
type entry struct {
	value     string
	createdAt time.Time
}

// Cache is the result cache. Construct once at startup with New and share
// by reference. All methods are safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	max     int
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithCapacity overrides the entry bound.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.max = n
		}
	}
}

// WithTTL overrides the entry lifetime.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithClock replaces the cache's time source for deterministic expiry tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New builds an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		max:     DefaultCapacity,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key. Entries past their TTL are removed
// on access and reported as absent.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.createdAt) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

// Put stores value under key, evicting the oldest-created entry first when
// the cache is full and key is new. Eviction is by creation time, not last
// access.
//
// The error return is part of the contract so call sites that treat cache
// writes as best-effort have to ignore it visibly; the in-memory
// implementation never fails.
func (c *Cache) Put(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictOldest()
	}
	c.entries[key] = entry{value: value, createdAt: c.now()}
	return nil
}

// GetOrProduce returns the cached value for the (fingerprint, opts) key, or
// runs produce, stores its result and returns it. The returned flag says
// whether the value came from the cache. Concurrent misses on the same key
// are collapsed into a single produce call; a produce failure is returned
// untouched and leaves the cache unchanged, so a broken cache path can never
// block regeneration.
func (c *Cache) GetOrProduce(ctx context.Context, fingerprint string, opts Options, produce func(ctx context.Context) (string, error)) (string, bool, error) {
	key := Key(fingerprint, opts)
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		out, err := produce(ctx)
		if err != nil {
			return "", err
		}
		// Best-effort write: a failure here must not fail the request.
		_ = c.Put(key, out)
		return out, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}

// InvalidateDocument drops every entry belonging to the given document
// fingerprint. Called when the document is replaced or removed: artifacts
// derived from content that no longer exists must not be served.
func (c *Cache) InvalidateDocument(fingerprint string) {
	prefix := fingerprint + ":"
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Clear drops everything, e.g. when the owning session ends.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports the number of live entries, counting expired ones that have
// not been touched yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest removes the single entry with the oldest creation time.
// Caller must hold c.mu.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, e := range c.entries {
		if first || e.createdAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.createdAt
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
