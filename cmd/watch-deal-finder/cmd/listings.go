package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func listingsCmd() *cobra.Command {
	listingsRoot := &cobra.Command{
		Use:   "listings",
		Short: "Query tracked listings",
	}

	listingsRoot.AddCommand(
		listingsListCmd(),
		listingsGetCmd(),
	)

	return listingsRoot
}

func listingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active listings",
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

			listings, err := st.ListActiveListings(ctx)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(listings)
			}
			return printListingsTable(listings)
		},
	}
}

func listingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <item-id>",
		Short: "Show one listing",
		Args:  cobra.ExactArgs(1),
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

			listing, err := st.GetListing(ctx, args[0])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(listing)
			}
			return printListingDetail(listing)
		},
	}
}
