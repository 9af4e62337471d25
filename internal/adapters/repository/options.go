package repository

import (
	"time"

	"github.com/careeratlas/trends/pkg/logger"
)

type settings struct {
	log          logger.Logger
	queryTimeout time.Duration
	maxConns     int32
}

func defaultSettings() settings {
	return settings{
		log:          logger.Nop(),
		queryTimeout: 5 * time.Second,
	}
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithLogger sets the logger used by the store.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithQueryTimeout bounds each store round trip.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// WithMaxConns caps the Postgres pool size. Ignored by SQLite.
func WithMaxConns(n int32) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxConns = n
		}
	}
}
