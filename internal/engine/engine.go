// Package engine orchestrates brand scans, deal detection, and alert
// delivery.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"watch-deal-finder/internal/detect"
	"watch-deal-finder/internal/feed"
	"watch-deal-finder/internal/ingest"
	"watch-deal-finder/internal/metrics"
	"watch-deal-finder/internal/notify"
	"watch-deal-finder/internal/store"
	domain "watch-deal-finder/pkg/types"
)

const defaultMinDropPercent = 10.0

// Engine wires the feed, store, detector, and notifier together.
type Engine struct {
	store    store.Store
	source   feed.Source
	ingestor *ingest.Ingestor
	detector *detect.Detector
	notifier notify.Notifier
	log      *slog.Logger

	brands         []string
	pageSize       int
	minDropPercent float64
	staggerOffset  time.Duration
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	s store.Store,
	src feed.Source,
	n notify.Notifier,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		store:          s,
		source:         src,
		notifier:       n,
		log:            slog.Default(),
		pageSize:       100,
		minDropPercent: defaultMinDropPercent,
		staggerOffset:  time.Second,
	}
	for _, opt := range opts {
		opt(eng)
	}
	eng.ingestor = ingest.NewIngestor(s, eng.log)
	if eng.detector == nil {
		eng.detector = detect.NewDetector(s, detect.WithLogger(eng.log))
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithBrands sets the brands to scan.
func WithBrands(brands []string) EngineOption {
	return func(e *Engine) {
		e.brands = brands
	}
}

// WithPageSize sets the feed page size per brand search.
func WithPageSize(n int) EngineOption {
	return func(e *Engine) {
		e.pageSize = n
	}
}

// WithMinDropPercent sets the minimum price drop forwarded to notifiers.
func WithMinDropPercent(p float64) EngineOption {
	return func(e *Engine) {
		e.minDropPercent = p
	}
}

// WithStaggerOffset sets the delay between scanning each brand.
func WithStaggerOffset(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.staggerOffset = d
	}
}

// WithDetector overrides the default detector.
func WithDetector(d *detect.Detector) EngineOption {
	return func(e *Engine) {
		e.detector = d
	}
}

// RunScan fetches one feed page per configured brand and ingests every
// snapshot. Invalid snapshots and per-brand feed failures are logged and
// skipped; the scan covers as many brands as the daily quota allows.
func (eng *Engine) RunScan(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	for i, brand := range eng.brands {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		eng.log.Info("scanning brand", "brand", brand)

		if err := eng.scanBrand(ctx, brand); err != nil {
			if errors.Is(err, feed.ErrDailyLimitReached) {
				eng.log.Warn("daily feed limit reached, stopping scan", "brand", brand)
				break
			}
			// Persistence failures are already counted by the ingestor.
			eng.log.Error("brand scan failed", "brand", brand, "error", err)
			continue
		}

		// Stagger between brands to avoid feed bursts.
		if i < len(eng.brands)-1 && eng.staggerOffset > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(eng.staggerOffset):
			}
		}
	}

	return nil
}

func (eng *Engine) scanBrand(ctx context.Context, brand string) error {
	resp, err := eng.source.Search(ctx, feed.SearchRequest{
		Brand: brand,
		Limit: eng.pageSize,
	})
	if err != nil {
		return fmt.Errorf("searching feed: %w", err)
	}

	var accepted, rejected int
	for i := range resp.Snapshots {
		_, _, err := eng.ingestor.Ingest(ctx, &resp.Snapshots[i])
		if err != nil {
			var verr *ingest.ValidationError
			if errors.As(err, &verr) {
				rejected++
				eng.log.Warn("snapshot rejected", "error", verr)
				continue
			}
			return fmt.Errorf("ingesting snapshot: %w", err)
		}
		accepted++
	}

	eng.log.Info("brand scan complete",
		"brand", brand,
		"accepted", accepted,
		"rejected", rejected,
	)
	return nil
}

// RunDetection evaluates all active listings and forwards qualifying deals
// to the notifier. Invariant violations are logged but do not abort the run.
func (eng *Engine) RunDetection(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.DetectionDuration.Observe(time.Since(start).Seconds())
	}()

	runID := uuid.NewString()
	log := eng.log.With("run_id", runID)

	candidates, err := eng.detector.Detect(ctx)
	if err != nil {
		var ierr *detect.InvariantError
		if !errors.As(err, &ierr) {
			return fmt.Errorf("detecting deals: %w", err)
		}
		log.Error("detection reported invariant violations", "error", err)
	}

	metrics.DealsDetectedTotal.Add(float64(len(candidates)))
	log.Info("detection complete", "candidates", len(candidates))

	deals := eng.filterDeals(candidates)
	if len(deals) == 0 {
		return nil
	}

	return eng.notifyDeals(ctx, log, deals)
}

// filterDeals keeps candidates whose drop meets the configured threshold.
// Detection casts a wider net; only the drop gates forwarding.
func (eng *Engine) filterDeals(candidates []domain.DealCandidate) []notify.DealAlert {
	deals := make([]notify.DealAlert, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.PriceDropPercent >= eng.minDropPercent {
			deals = append(deals, notify.FromCandidate(c))
		}
	}
	return deals
}

const batchThreshold = 5

func (eng *Engine) notifyDeals(
	ctx context.Context,
	log *slog.Logger,
	deals []notify.DealAlert,
) error {
	if len(deals) >= batchThreshold {
		if err := eng.notifier.SendDealBatch(ctx, deals); err != nil {
			metrics.NotificationFailuresTotal.Inc()
			return fmt.Errorf("sending batch notification: %w", err)
		}
		metrics.DealsNotifiedTotal.Add(float64(len(deals)))
		log.Info("batch notification sent", "count", len(deals))
		return nil
	}

	var errs []error
	for i := range deals {
		if err := eng.notifier.SendDeal(ctx, deals[i]); err != nil {
			metrics.NotificationFailuresTotal.Inc()
			errs = append(errs, fmt.Errorf("notifying %s: %w", deals[i].ItemID, err))
			continue
		}
		metrics.DealsNotifiedTotal.Inc()
	}
	return errors.Join(errs...)
}
