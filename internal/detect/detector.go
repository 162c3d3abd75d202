// Package detect finds underpriced active listings by combining each
// listing's own price history with recent comparable sales.
package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"watch-deal-finder/internal/metrics"
	domain "watch-deal-finder/pkg/types"
)

// Eligibility thresholds. A listing qualifies as a deal candidate when any
// one of the three signals fires.
const (
	eligibleDropPercent  = 10.0
	eligibleObservations = 5
	comparableDiscount   = 0.8
)

const defaultSoldWindowDays = 30

// InvariantError reports an active listing with no price history. Every
// upsert records an observation, so this indicates store corruption.
type InvariantError struct {
	ItemID string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("active listing %s has no price history", e.ItemID)
}

// Reader is the subset of the store the detector needs. Detection never
// writes.
type Reader interface {
	ListActiveListings(ctx context.Context) ([]domain.Listing, error)
	PriceStatsByItem(ctx context.Context) (map[string]domain.PriceStats, error)
	SoldItemsSince(ctx context.Context, since time.Time) ([]domain.SoldItem, error)
}

// Detector evaluates all active listings in one pass.
type Detector struct {
	reader         Reader
	log            *slog.Logger
	soldWindowDays int
	nowFunc        func() time.Time
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		d.log = l
	}
}

// WithSoldWindowDays sets the trailing window for comparable sales.
func WithSoldWindowDays(days int) Option {
	return func(d *Detector) {
		d.soldWindowDays = days
	}
}

// WithNowFunc overrides the clock, for deterministic windows in tests.
func WithNowFunc(f func() time.Time) Option {
	return func(d *Detector) {
		d.nowFunc = f
	}
}

// NewDetector creates a Detector reading from r.
func NewDetector(r Reader, opts ...Option) *Detector {
	d := &Detector{
		reader:         r,
		log:            slog.Default(),
		soldWindowDays: defaultSoldWindowDays,
		nowFunc:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect evaluates every active listing and returns the eligible candidates
// ranked best first. Listings that violate the history invariant are skipped
// and reported through the joined error; the candidate list is still valid
// when err is non-nil.
func (d *Detector) Detect(ctx context.Context) ([]domain.DealCandidate, error) {
	listings, err := d.reader.ListActiveListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active listings: %w", err)
	}

	stats, err := d.reader.PriceStatsByItem(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading price stats: %w", err)
	}

	cutoff := d.nowFunc().AddDate(0, 0, -d.soldWindowDays)
	sold, err := d.reader.SoldItemsSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("loading sold items: %w", err)
	}

	var (
		candidates []domain.DealCandidate
		violations []error
	)

	for i := range listings {
		l := &listings[i]

		ps, ok := stats[l.ItemID]
		if !ok || ps.Observations == 0 {
			metrics.InvariantViolationsTotal.Inc()
			d.log.Error("active listing has no price history", "item_id", l.ItemID)
			violations = append(violations, &InvariantError{ItemID: l.ItemID})
			continue
		}

		c := evaluate(l, ps, sold)
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	rank(candidates)

	return candidates, errors.Join(violations...)
}

// evaluate computes the deal signals for one listing and returns a candidate
// when at least one eligibility rule fires.
func evaluate(
	l *domain.Listing,
	ps domain.PriceStats,
	sold []domain.SoldItem,
) *domain.DealCandidate {
	drop := 0.0
	if ps.MaxPrice > 0 && l.CurrentPrice < ps.MaxPrice {
		drop = round2((ps.MaxPrice - l.CurrentPrice) / ps.MaxPrice * 100)
	}

	avgSold := comparableAvg(l, sold)

	var profit *float64
	if avgSold != nil && l.CurrentPrice > 0 {
		p := round2((*avgSold - l.CurrentPrice) / l.CurrentPrice * 100)
		profit = &p
	}

	belowComparable := avgSold != nil && l.CurrentPrice < comparableDiscount**avgSold

	if drop <= eligibleDropPercent &&
		ps.Observations <= eligibleObservations &&
		!belowComparable {
		return nil
	}

	// Round the average only for output, after it has fed the profit and
	// eligibility math.
	if avgSold != nil {
		r := round2(*avgSold)
		avgSold = &r
	}

	return &domain.DealCandidate{
		ItemID:                 l.ItemID,
		Title:                  l.Title,
		Brand:                  l.Brand,
		CurrentPrice:           l.CurrentPrice,
		BuyItNowPrice:          l.BuyItNowPrice,
		TimeLeft:               l.TimeLeft,
		URL:                    l.URL,
		MaxPrice:               ps.MaxPrice,
		PriceDropPercent:       drop,
		ObservationCount:       ps.Observations,
		AvgSoldPrice:           avgSold,
		PotentialProfitPercent: profit,
	}
}

// comparableAvg averages the final prices of recent sales matching the
// listing's brand exactly whose titles contain the listing title. Returns
// nil when no sale matches.
func comparableAvg(l *domain.Listing, sold []domain.SoldItem) *float64 {
	var (
		sum   float64
		count int
	)
	for i := range sold {
		s := &sold[i]
		if s.Brand != l.Brand {
			continue
		}
		if !strings.Contains(s.Title, l.Title) {
			continue
		}
		sum += s.FinalPrice
		count++
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

// rank orders candidates by potential profit (treating unknown as zero),
// breaking ties with the larger price drop.
func rank(candidates []domain.DealCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		pi := coalesce(candidates[i].PotentialProfitPercent)
		pj := coalesce(candidates[j].PotentialProfitPercent)
		if pi != pj {
			return pi > pj
		}
		return candidates[i].PriceDropPercent > candidates[j].PriceDropPercent
	})
}

func coalesce(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func round2(f float64) float64 {
	v, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return v
}
