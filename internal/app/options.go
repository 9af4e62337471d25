package service

import (
	"time"

	"github.com/careeratlas/trends/internal/adapters/repository"
	"github.com/careeratlas/trends/internal/domain/region"
	"github.com/careeratlas/trends/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the trend data store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithRegions replaces the embedded regional factor table.
func WithRegions(table *region.Table) Option {
	return func(s *Service) {
		if table != nil {
			s.regions = table
		}
	}
}

// WithCacheTTL sets how long resolved trends stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMarketCacheTTL sets how long market boards stay fresh.
func WithMarketCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.marketTTL = ttl
		}
	}
}

// WithClock injects the time source used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaultLanguage sets the fallback language and the initial active one.
func WithDefaultLanguage(lang string) Option {
	return func(s *Service) {
		if lang != "" {
			s.defaultLanguage = lang
		}
	}
}

// WithMaxTrendingLimit caps the size of a trending list.
func WithMaxTrendingLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTrendingLimit = n
		}
	}
}

// WithBatchConcurrency bounds parallel lookups in TrendsFor.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithStatsInterval sets how often cache and runtime gauges are refreshed
// while the service is started.
func WithStatsInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.statsInterval = d
		}
	}
}
