package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <item-id>",
		Short: "Show the price history for a listing",
		Long: "Print every recorded price observation for a listing, oldest\n" +
			"first, with the change from the previous observation. An unknown\n" +
			"item id prints an empty history.",
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

			history, err := st.PriceHistory(ctx, args[0])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(history)
			}
			return printHistoryTable(history)
		},
	}
}
