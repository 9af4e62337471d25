package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNoTrend = errors.New("no trend data")

func newLookupCmd() *cobra.Command {
	var lang, regionID string

	cmd := &cobra.Command{
		Use:   "lookup <careerId>",
		Short: "Print the region-adjusted trend for one career as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			svc, err := startService(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer svc.Stop()

			rec, ok := svc.GetTrend(ctx, args[0], lang, regionID)
			if !ok {
				return fmt.Errorf("%w for %s", errNoTrend, args[0])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language code (defaults to the configured language)")
	cmd.Flags().StringVar(&regionID, "region", "", "region id (defaults to north-america)")
	return cmd
}
