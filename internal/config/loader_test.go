package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/careeratlas/trends/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	config.EnvConfigFile,
	config.EnvDotenvFile,
	"CAREERTRENDS_ADDR",
	"CAREERTRENDS_LOG_LEVEL",
	"CAREERTRENDS_DEFAULT_LANGUAGE",
	"CAREERTRENDS_CACHE_TTL",
	"CAREERTRENDS_MAX_TRENDING_LIMIT",
	"CAREERTRENDS_BATCH_CONCURRENCY",
	"CAREERTRENDS_CORS_ORIGINS",
	"CAREERTRENDS_STORE_DRIVER",
	"CAREERTRENDS_DATABASE_URL",
	"CAREERTRENDS_SQLITE_PATH",
	"CAREERTRENDS_REGIONS_FILE",
	"CAREERTRENDS_MARKET_CACHE_TTL",
	"CAREERTRENDS_METRICS_ENABLED",
	"CAREERTRENDS_METRICS_NAMESPACE",
	"CAREERTRENDS_METRICS_SUBSYSTEM",
	"CAREERTRENDS_METRICS_PREFIX",
	"CAREERTRENDS_METRICS_LABELS",
	"CAREERTRENDS_METRICS_LATENCY_BUCKETS",
	"CAREERTRENDS_METRICS_REFRESH_INTERVAL",
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.CacheTTL, convey.ShouldEqual, 30*time.Minute)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverSQLite)
				convey.So(cfg.MarketCacheTTL, convey.ShouldEqual, time.Hour)
				convey.So(cfg.Metrics.Enabled, convey.ShouldBeTrue)
				convey.So(cfg.Metrics.RefreshInterval, convey.ShouldEqual, 15*time.Second)
			})
		})

		convey.Convey("When metric settings come from the environment", func() {
			_ = os.Setenv("CAREERTRENDS_MARKET_CACHE_TTL", "2h")
			_ = os.Setenv("CAREERTRENDS_METRICS_ENABLED", "false")
			_ = os.Setenv("CAREERTRENDS_METRICS_NAMESPACE", "acme")
			_ = os.Setenv("CAREERTRENDS_METRICS_PREFIX", "api")
			_ = os.Setenv("CAREERTRENDS_METRICS_LABELS", "env=prod, region = eu ,=orphan")
			_ = os.Setenv("CAREERTRENDS_METRICS_LATENCY_BUCKETS", "1,10,100")
			_ = os.Setenv("CAREERTRENDS_METRICS_REFRESH_INTERVAL", "1m")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the metrics block is populated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MarketCacheTTL, convey.ShouldEqual, 2*time.Hour)
				convey.So(cfg.Metrics.Enabled, convey.ShouldBeFalse)
				convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "acme")
				convey.So(cfg.Metrics.Subsystem, convey.ShouldEqual, "trends")
				convey.So(cfg.Metrics.Prefix, convey.ShouldEqual, "api")
				convey.So(cfg.Metrics.Labels, convey.ShouldResemble, map[string]string{"env": "prod", "region": "eu"})
				convey.So(cfg.Metrics.LatencyBuckets, convey.ShouldResemble, []float64{1, 10, 100})
				convey.So(cfg.Metrics.RefreshInterval, convey.ShouldEqual, time.Minute)
			})
		})

		convey.Convey("When latency buckets are not increasing", func() {
			_ = os.Setenv("CAREERTRENDS_METRICS_LATENCY_BUCKETS", "10,1")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the config is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CAREERTRENDS_ADDR", ":8080")
			_ = os.Setenv("CAREERTRENDS_CACHE_TTL", "45m")
			_ = os.Setenv("CAREERTRENDS_MAX_TRENDING_LIMIT", "25")
			_ = os.Setenv("CAREERTRENDS_DEFAULT_LANGUAGE", "ja")
			_ = os.Setenv("CAREERTRENDS_CORS_ORIGINS", "https://a.example, https://b.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.CacheTTL, convey.ShouldEqual, 45*time.Minute)
				convey.So(cfg.MaxTrendingLimit, convey.ShouldEqual, 25)
				convey.So(cfg.DefaultLanguage, convey.ShouldEqual, "ja")
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
cache_ttl: 10m
store_driver: postgres
database_url: postgres://trends@localhost/trends
batch_concurrency: 3
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv(config.EnvConfigFile, tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.CacheTTL, convey.ShouldEqual, 10*time.Minute)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverPostgres)
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://trends@localhost/trends")
				convey.So(cfg.BatchConcurrency, convey.ShouldEqual, 3)
				convey.So(cfg.DefaultLanguage, convey.ShouldEqual, "en") // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
max_trending_limit: 50
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv(config.EnvConfigFile, tmpFile)
			_ = os.Setenv("CAREERTRENDS_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxTrendingLimit, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When a .env file is present", func() {
			dir := createTempDir()
			defer func() { _ = os.RemoveAll(dir) }()
			path := filepath.Join(dir, "test.env")
			writeFile(path, "CAREERTRENDS_STORE_DRIVER=postgres\nCAREERTRENDS_DATABASE_URL=postgres://from-dotenv/trends\n")
			_ = os.Setenv(config.EnvDotenvFile, path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverPostgres)
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://from-dotenv/trends")
			})
		})

		convey.Convey("When the named .env file does not exist", func() {
			_ = os.Setenv(config.EnvDotenvFile, "/non/existent/.env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv(config.EnvConfigFile, tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv(config.EnvConfigFile, "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When postgres is selected without credentials", func() {
			_ = os.Setenv("CAREERTRENDS_STORE_DRIVER", "postgres")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should refuse to start", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "database_url is required")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CAREERTRENDS_MAX_TRENDING_LIMIT", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range configEnvVars {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "careertrends-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}

func createTempDir() string {
	dir, err := os.MkdirTemp("", "careertrends-dotenv-*")
	if err != nil {
		panic(err)
	}
	return dir
}

func writeFile(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		panic(err)
	}
}
