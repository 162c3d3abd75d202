package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	domain "watch-deal-finder/pkg/types"
)

func soldCmd() *cobra.Command {
	soldRoot := &cobra.Command{
		Use:   "sold",
		Short: "Manage the sold-items archive",
	}

	soldRoot.AddCommand(
		soldRecordCmd(),
		soldListCmd(),
	)

	return soldRoot
}

func soldRecordCmd() *cobra.Command {
	var (
		itemID    string
		title     string
		brand     string
		price     float64
		soldDate  string
		condition string
		listingID string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a completed sale",
		Long: "Insert one completed transaction into the sold-items archive.\n" +
			"The archive is insert-only; recording the same item id twice\n" +
			"fails.",
		Example: `  # Record a sale completed today
  watch-deal-finder sold record --item-id sold-1 --title "Seiko SKX007" --brand Seiko --price 245.00

  # Record a past sale with a condition note
  watch-deal-finder sold record --item-id sold-2 --title "Omega Seamaster" --brand Omega \
    --price 1850.00 --date 2026-08-01 --condition "pre-owned"`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			sale := &domain.SoldItem{
				ItemID:     itemID,
				Title:      title,
				Brand:      brand,
				FinalPrice: price,
			}
			if soldDate != "" {
				d, err := time.Parse("2006-01-02", soldDate)
				if err != nil {
					return fmt.Errorf("parsing --date: %w", err)
				}
				sale.SoldDate = d
			}
			if condition != "" {
				sale.Condition = &condition
			}
			if listingID != "" {
				sale.OriginalListingID = &listingID
			}

			ctx := context.Background()

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.RecordSale(ctx, sale); err != nil {
				return err
			}

			fmt.Printf("recorded sale %s\n", itemID)
			return nil
		},
	}

	cmd.Flags().StringVar(&itemID, "item-id", "", "item id of the sold listing")
	cmd.Flags().StringVar(&title, "title", "", "listing title")
	cmd.Flags().StringVar(&brand, "brand", "", "watch brand")
	cmd.Flags().Float64Var(&price, "price", 0, "final sale price")
	cmd.Flags().StringVar(&soldDate, "date", "", "sale date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&condition, "condition", "", "item condition")
	cmd.Flags().StringVar(&listingID, "listing-id", "", "originating listing id")

	cobra.CheckErr(cmd.MarkFlagRequired("item-id"))
	cobra.CheckErr(cmd.MarkFlagRequired("title"))
	cobra.CheckErr(cmd.MarkFlagRequired("brand"))
	cobra.CheckErr(cmd.MarkFlagRequired("price"))

	return cmd
}

func soldListCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recently recorded sales",
		RunE: func(_ *cobra.Command, _ []string) error {
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

			since := time.Now().AddDate(0, 0, -days)
			items, err := st.SoldItemsSince(ctx, since)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(items)
			}
			return printSoldTable(items)
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "trailing window in days")

	return cmd
}
