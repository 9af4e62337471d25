// Package cache provides the in-memory TTL cache used for resolved trends.
package cache

import (
	"sort"
	"sync"
	"time"
)

// DefaultTTL is how long an entry lives unless WithTTL overrides it.
const DefaultTTL = 30 * time.Minute

// Stats is a point-in-time view of the cache.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache maps string keys to values with an absolute expiry.
// Expired entries read as absent through Get and are dropped lazily unless
// the cache retains them. Concurrent writers to the same key race; the last
// Set wins.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
	retain  bool
}

// New creates an empty cache.
func New[V any](opts ...Option) *Cache[V] {
	cfg := config{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     cfg.ttl,
		now:     cfg.now,
		retain:  cfg.retain,
	}
}

// TTL returns the configured time-to-live.
func (c *Cache[V]) TTL() time.Duration { return c.ttl }

// Get returns the live value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if !now.Before(e.expiresAt) {
		if c.retain {
			var zero V
			return zero, false
		}
		c.mu.Lock()
		// re-check; a concurrent Set may have refreshed it
		if cur, still := c.entries[key]; still && !now.Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Lookup returns the entry for key whether or not it has expired. fresh
// reports whether it is still live. Lookup never removes entries.
func (c *Cache[V]) Lookup(key string) (value V, fresh, ok bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return value, false, false
	}
	return e.value, now.Before(e.expiresAt), true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[V]) Set(key string, value V) {
	exp := c.now().Add(c.ttl)
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: exp}
	c.mu.Unlock()
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every entry and returns how many were removed.
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
	return n
}

// Len returns the number of live entries, pruning expired ones.
func (c *Cache[V]) Len() int {
	return len(c.liveKeys())
}

// Stats returns the live size and sorted keys.
func (c *Cache[V]) Stats() Stats {
	keys := c.liveKeys()
	sort.Strings(keys)
	return Stats{Size: len(keys), Keys: keys}
}

func (c *Cache[V]) liveKeys() []string {
	if !c.retain {
		c.prune()
	}
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k, e := range c.entries {
		if now.Before(e.expiresAt) {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *Cache[V]) prune() {
	now := c.now()
	c.mu.Lock()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
