// Command trends serves region-adjusted career market trends over HTTP and
// offers a few operator subcommands against the same store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/careeratlas/trends/internal/adapters/repository"
	service "github.com/careeratlas/trends/internal/app"
	"github.com/careeratlas/trends/internal/config"
	"github.com/careeratlas/trends/internal/domain/region"
	"github.com/careeratlas/trends/pkg/logger"
	"github.com/careeratlas/trends/pkg/metrics"
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trends",
		Short:         "Career trend lookup service",
		Long:          "Serves region-adjusted career market trends, industry roll-ups and trending careers backed by Postgres or SQLite.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newLookupCmd(), newRegionsCmd(), newSeedCmd())
	return root
}

// loadConfig reads configuration and applies the configured log level,
// falling back to info on invalid input.
func loadConfig(ctx context.Context) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, log, nil
}

func loadRegions(cfg *config.Config) (*region.Table, error) {
	if cfg.RegionsFile == "" {
		return region.Default(), nil
	}
	return region.LoadFile(cfg.RegionsFile)
}

// configureMetrics rebuilds the metrics registry from cfg. It runs before
// the HTTP server captures the registry.
func configureMetrics(cfg *config.Config) *metrics.Manager {
	m := cfg.Metrics
	return metrics.Configure(metrics.Settings{
		Enabled:         m.Enabled,
		Namespace:       m.Namespace,
		Subsystem:       m.Subsystem,
		Prefix:          m.Prefix,
		Labels:          m.Labels,
		LatencyBuckets:  m.LatencyBuckets,
		RefreshInterval: m.RefreshInterval,
	}.Options()...)
}

// startService opens the configured store and starts a service over it.
// Callers own the returned service and must Stop it.
func startService(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, error) {
	mm := configureMetrics(cfg)

	table, err := loadRegions(cfg)
	if err != nil {
		return nil, err
	}

	store, err := repository.Open(ctx, cfg, repository.WithLogger(log.Named("store")))
	if err != nil {
		return nil, err
	}

	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithStore(store),
		service.WithRegions(table),
		service.WithCacheTTL(cfg.CacheTTL),
		service.WithMarketCacheTTL(cfg.MarketCacheTTL),
		service.WithStatsInterval(mm.RefreshInterval()),
		service.WithDefaultLanguage(cfg.DefaultLanguage),
		service.WithMaxTrendingLimit(cfg.MaxTrendingLimit),
		service.WithBatchConcurrency(cfg.BatchConcurrency),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("start service: %w", err)
	}
	return svc, nil
}
