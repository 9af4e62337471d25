package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/careeratlas/trends/internal/adapters/repository"
	"github.com/careeratlas/trends/internal/config"
	"github.com/careeratlas/trends/pkg/logger"
)

var errSeedDriver = errors.New("seed requires the sqlite store driver")

func newSeedCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a JSON fixture into the SQLite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if cfg.StoreDriver != config.DriverSQLite {
				return fmt.Errorf("%w, got %q", errSeedDriver, cfg.StoreDriver)
			}

			fixture, err := repository.LoadFixture(path)
			if err != nil {
				return err
			}
			store, err := repository.NewSQLiteStore(ctx, cfg.SQLitePath, repository.WithLogger(log.Named("store")))
			if err != nil {
				return err
			}
			defer store.Close()

			counts, err := store.Seed(ctx, fixture)
			if err != nil {
				return fmt.Errorf("seed %s: %w", path, err)
			}
			log.Info(ctx, "fixture loaded",
				logger.String("path", path),
				logger.Int("careerTrends", counts.CareerTrends),
				logger.Int("industryTrends", counts.IndustryTrends),
				logger.Int("trendingCareers", counts.TrendingCareers),
				logger.Int("history", counts.History),
				logger.Int("skills", counts.Skills),
				logger.Int("marketIndustries", counts.MarketIndustries),
				logger.Int("emergingRoles", counts.EmergingRoles),
				logger.Int("marketUpdates", counts.MarketUpdates),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d career trends, %d industry trends, %d trending careers, %d history rows, %d skills, %d market industries, %d emerging roles, %d market updates\n",
				counts.CareerTrends, counts.IndustryTrends, counts.TrendingCareers, counts.History,
				counts.Skills, counts.MarketIndustries, counts.EmergingRoles, counts.MarketUpdates)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "path to the JSON fixture")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
