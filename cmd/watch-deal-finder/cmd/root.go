// Package cmd implements the CLI commands for watch-deal-finder.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"watch-deal-finder/internal/config"
	"watch-deal-finder/internal/store"
	"watch-deal-finder/pkg/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "watch-deal-finder",
		Short: "Track watch auction prices and detect deals",
		Long: "watch-deal-finder ingests auction listing snapshots, keeps a\n" +
			"per-listing price history, archives completed sales, and flags\n" +
			"active listings whose price signals suggest a deal.",
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(listingsCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(soldCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(versionCommand())
}

func initConfig() {
	viper.SetEnvPrefix("WDF")
	viper.AutomaticEnv()
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

// loadConfig reads the config file named by --config and builds a logger
// from its logging section.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format), nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store.PostgresStore, error) {
	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return st, nil
}
