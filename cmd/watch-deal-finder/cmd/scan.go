package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one feed scan cycle",
		Long: "Pull listing snapshots from the feed for every configured brand\n" +
			"and ingest them, then exit. Useful for cron-driven deployments\n" +
			"and for backfilling after downtime.",
		RunE: runScan,
	}
}

func runScan(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Feed.BaseURL == "" {
		return fmt.Errorf("feed.base_url is required for scan")
	}

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	eng := buildEngine(cfg, st, newDetector(cfg, st, log), log)
	return eng.RunScan(ctx)
}
