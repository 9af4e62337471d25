// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"runtime"
	"time"
)

// Store drivers understood by the service.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DefaultLanguage is the language used for fallback lookups and as the
	// initial active language.
	DefaultLanguage string `koanf:"default_language"`

	// CacheTTL bounds how long a resolved trend stays cached.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// MarketCacheTTL bounds how long the skill, industry and role boards
	// are served before the store is asked again.
	MarketCacheTTL time.Duration `koanf:"market_cache_ttl"`

	// MaxTrendingLimit caps GET /v1/trending?limit.
	MaxTrendingLimit int `koanf:"max_trending_limit"`

	// BatchConcurrency bounds parallel store fetches for batch lookups.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// RegionsFile optionally replaces the embedded regional factor table.
	RegionsFile string `koanf:"regions_file"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `koanf:"cors_origins"`

	// StoreDriver selects the data store backend: postgres or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// DatabaseURL is the Postgres connection string. Required for postgres.
	DatabaseURL string `koanf:"database_url"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `koanf:"sqlite_path"`

	Metrics Metrics `koanf:",squash"`
}

// Metrics configures the Prometheus collectors.
type Metrics struct {
	Enabled         bool              `koanf:"metrics_enabled"`
	Namespace       string            `koanf:"metrics_namespace"`
	Subsystem       string            `koanf:"metrics_subsystem"`
	Prefix          string            `koanf:"metrics_prefix"`
	Labels          map[string]string `koanf:"metrics_labels"`
	LatencyBuckets  []float64         `koanf:"metrics_latency_buckets"`
	RefreshInterval time.Duration     `koanf:"metrics_refresh_interval"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		DefaultLanguage:  "en",
		CacheTTL:         30 * time.Minute,
		MarketCacheTTL:   time.Hour,
		MaxTrendingLimit: 100,
		BatchConcurrency: runtime.NumCPU() * 2,
		CORSOrigins:      []string{"*"},
		StoreDriver:      DriverSQLite,
		SQLitePath:       "data/trends.db",
		Metrics: Metrics{
			Enabled:         true,
			Namespace:       "careeratlas",
			Subsystem:       "trends",
			RefreshInterval: 15 * time.Second,
		},
	}
}
