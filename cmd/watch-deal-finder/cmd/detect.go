package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"watch-deal-finder/internal/detect"
)

func detectCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run one deal detection cycle",
		Long: "Evaluate every active listing against its price history and the\n" +
			"sold-items archive, then notify the configured channels. With\n" +
			"--dry-run the candidates are printed instead of notified.",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			detector := newDetector(cfg, st, log)

			if !dryRun {
				eng := buildEngine(cfg, st, detector, log)
				return eng.RunDetection(ctx)
			}

			deals, err := detector.Detect(ctx)
			if err != nil {
				var invErr *detect.InvariantError
				if !errors.As(err, &invErr) {
					return err
				}
				log.Warn("detection reported invariant violations", "err", err)
			}

			if jsonOutput() {
				return outputJSON(deals)
			}
			return printDealsTable(deals)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print candidates instead of notifying")

	return cmd
}
