package cache

import "time"

type config struct {
	ttl    time.Duration
	now    func() time.Time
	retain bool
}

// Option applies a configuration option to a Cache.
type Option func(*config)

// WithTTL sets the entry lifetime. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRetainExpired keeps expired entries until they are replaced or the
// cache is cleared, so Lookup can still serve them as stale values.
func WithRetainExpired() Option {
	return func(c *config) {
		c.retain = true
	}
}
