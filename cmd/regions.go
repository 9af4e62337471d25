package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRegionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the regional factor table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			table, err := loadRegions(cfg)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTECH\tHEALTH\tMFG\tREMOTE\tSALARY")
			for _, info := range table.All() {
				f, _ := table.Lookup(info.ID)
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
					f.ID, f.Name, f.TechGrowth, f.HealthcareGrowth, f.ManufacturingGrowth, f.RemoteWork, f.SalaryMultiplier)
			}
			return tw.Flush()
		},
	}
}
