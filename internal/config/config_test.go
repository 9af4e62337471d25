package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/careeratlas/trends/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DefaultLanguage, convey.ShouldEqual, "en")
			convey.So(cfg.CacheTTL, convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.MaxTrendingLimit, convey.ShouldEqual, 100)
			convey.So(cfg.BatchConcurrency, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverSQLite)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the postgres driver has no database url", func() {
			cfg.StoreDriver = config.DriverPostgres
			err := cfg.Validate()

			convey.Convey("Then it is a configuration error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "database_url")
			})
		})

		convey.Convey("When the driver is unknown", func() {
			cfg.StoreDriver = "mongo"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When numeric bounds are violated", func() {
			cfg.CacheTTL = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			cfg.CacheTTL = time.Minute
			cfg.BatchConcurrency = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When market or metrics settings are out of range", func() {
			cfg.MarketCacheTTL = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			cfg.MarketCacheTTL = time.Hour
			cfg.Metrics.RefreshInterval = 0
			convey.So(cfg.Validate().Error(), convey.ShouldContainSubstring, "metrics_refresh_interval")
			cfg.Metrics.RefreshInterval = time.Second
			cfg.Metrics.Namespace = " "
			convey.So(cfg.Validate().Error(), convey.ShouldContainSubstring, "metrics_namespace")
		})
	})
}
