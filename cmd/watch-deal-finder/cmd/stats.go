package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var windowDays int

	cmd := &cobra.Command{
		Use:   "stats <brand>",
		Short: "Show market statistics for a brand",
		Long: "Aggregate the currently active listings and the sales completed\n" +
			"in the trailing window for one brand.",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.BrandStatistics(ctx, args[0], windowDays)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(stats)
			}
			return printBrandStats(stats)
		},
	}

	cmd.Flags().IntVar(&windowDays, "window-days", 30, "trailing sold window in days")

	return cmd
}
