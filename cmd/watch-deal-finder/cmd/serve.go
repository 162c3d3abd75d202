package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"watch-deal-finder/internal/api"
	"watch-deal-finder/internal/config"
	"watch-deal-finder/internal/detect"
	"watch-deal-finder/internal/engine"
	"watch-deal-finder/internal/feed"
	"watch-deal-finder/internal/notify"
	"watch-deal-finder/internal/store"
)

func serveCmd() *cobra.Command {
	var inMemory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and scheduler",
		Long: "Start the HTTP API, the periodic feed scanner, and the deal\n" +
			"detection scheduler. Runs until interrupted.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(inMemory)
		},
	}

	cmd.Flags().BoolVar(&inMemory, "memory", false, "use an in-memory store instead of PostgreSQL (development only; data is lost on exit)")

	return cmd
}

func runServe(inMemory bool) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	var st store.Store
	if inMemory {
		log.Warn("using in-memory store; data will not survive a restart")
		st = store.NewMemoryStore()
	} else {
		pg, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		st = pg
	}
	defer st.Close()

	detector := newDetector(cfg, st, log)
	eng := buildEngine(cfg, st, detector, log)

	sched, err := engine.NewScheduler(eng, cfg.Schedule.ScanInterval, cfg.Schedule.DetectInterval, log)
	if err != nil {
		return fmt.Errorf("building scheduler: %w", err)
	}

	if cfg.Feed.BaseURL == "" {
		log.Warn("feed.base_url is not set; scan cycles will fail until configured")
	}
	sched.Start()

	e := api.NewServer(api.Options{
		Store:          st,
		Detector:       detector,
		MinDropPercent: cfg.Detector.MinDropPercent,
		Logger:         log,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
		}
	}()

	// Wait for interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Let in-flight cron jobs finish before closing the store.
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("scheduler did not stop in time")
	}

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func newDetector(cfg *config.Config, st store.Store, log *slog.Logger) *detect.Detector {
	return detect.NewDetector(st,
		detect.WithLogger(log),
		detect.WithSoldWindowDays(cfg.Detector.SoldWindowDays),
	)
}

func buildEngine(cfg *config.Config, st store.Store, d *detect.Detector, log *slog.Logger) *engine.Engine {
	limiter := feed.NewRateLimiter(
		cfg.Feed.RateLimit.PerSecond,
		cfg.Feed.RateLimit.Burst,
		cfg.Feed.RateLimit.DailyLimit,
	)
	src := feed.NewClient(cfg.Feed.BaseURL,
		feed.WithHTTPClient(&http.Client{Timeout: cfg.Feed.Timeout}),
		feed.WithRateLimiter(limiter),
	)

	return engine.NewEngine(st, src, buildNotifier(cfg, log),
		engine.WithLogger(log),
		engine.WithBrands(cfg.Feed.Brands),
		engine.WithPageSize(cfg.Feed.PageSize),
		engine.WithMinDropPercent(cfg.Detector.MinDropPercent),
		engine.WithStaggerOffset(cfg.Schedule.StaggerOffset),
		engine.WithDetector(d),
	)
}

func buildNotifier(cfg *config.Config, log *slog.Logger) notify.Notifier {
	var notifiers []notify.Notifier
	if cfg.Notifications.Discord.Enabled {
		notifiers = append(notifiers, notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL))
	}
	if cfg.Notifications.Telegram.Enabled {
		notifiers = append(notifiers, notify.NewTelegramNotifier(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChatID,
		))
	}

	switch len(notifiers) {
	case 0:
		return notify.NewNoOpNotifier(log)
	case 1:
		return notifiers[0]
	default:
		return notify.NewMultiNotifier(notifiers...)
	}
}
