package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment keys read outside the koanf tree.
const (
	EnvPrefix     = "CAREERTRENDS_"
	EnvConfigFile = EnvPrefix + "CONFIG"
	EnvDotenvFile = EnvPrefix + "DOTENV"
	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CAREERTRENDS_CONFIG is set
//  3. env (prefix CAREERTRENDS_), after merging a .env file when one exists
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if err := loadDotenv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like CAREERTRENDS_CACHE_TTL -> cache_ttl (flat keys).
	// Comma separated values become lists for slice fields and k=v pairs
	// for metrics_labels.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		switch key {
		case "cors_origins", "metrics_latency_buckets":
			return key, splitList(value)
		case "metrics_labels":
			return key, splitPairs(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values a process cannot start without.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DefaultLanguage) == "":
		return fmt.Errorf("%w: default_language must not be empty", ErrInvalidConfig)
	case c.CacheTTL <= 0:
		return fmt.Errorf("%w: cache_ttl must be positive", ErrInvalidConfig)
	case c.MarketCacheTTL <= 0:
		return fmt.Errorf("%w: market_cache_ttl must be positive", ErrInvalidConfig)
	case c.Metrics.RefreshInterval <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	case strings.TrimSpace(c.Metrics.Namespace) == "":
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	case c.MaxTrendingLimit < 1:
		return fmt.Errorf("%w: max_trending_limit must be at least 1", ErrInvalidConfig)
	case c.BatchConcurrency < 1:
		return fmt.Errorf("%w: batch_concurrency must be at least 1", ErrInvalidConfig)
	}

	for i := 1; i < len(c.Metrics.LatencyBuckets); i++ {
		if c.Metrics.LatencyBuckets[i] <= c.Metrics.LatencyBuckets[i-1] {
			return fmt.Errorf("%w: metrics_latency_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}

	switch c.StoreDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("%w: database_url is required for the postgres store", ErrInvalidConfig)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}

// loadDotenv merges a .env file into the process environment without
// overriding variables that are already set.
func loadDotenv() error {
	path := os.Getenv(EnvDotenvFile)
	explicit := path != ""
	if !explicit {
		path = defaultDotenv
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("dotenv %s: %w", path, err)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitPairs parses "k=v,k2=v2". Entries without a key are dropped.
func splitPairs(v string) map[string]interface{} {
	out := make(map[string]interface{})
	for _, p := range splitList(v) {
		k, val, _ := strings.Cut(p, "=")
		if k = strings.TrimSpace(k); k != "" {
			out[k] = strings.TrimSpace(val)
		}
	}
	return out
}
