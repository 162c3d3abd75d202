package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "watch-deal-finder/pkg/types"
)

// MemoryStore implements Store entirely in memory. It backs unit tests and
// the development serve mode; PostgresStore is the durable implementation.
// A single mutex serializes every read-check-write sequence, which gives
// the same per-item atomicity guarantee the Postgres row lock provides.
type MemoryStore struct {
	mu       sync.Mutex
	listings map[string]domain.Listing
	history  map[string][]domain.PriceObservation
	sold     map[string]domain.SoldItem
	nowFunc  func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithNowFunc overrides the clock, for deterministic timestamps in tests.
func WithNowFunc(f func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.nowFunc = f
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		listings: make(map[string]domain.Listing),
		history:  make(map[string][]domain.PriceObservation),
		sold:     make(map[string]domain.SoldItem),
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertListing applies one validated snapshot under the store lock.
func (s *MemoryStore) UpsertListing(
	_ context.Context,
	snap *domain.ListingSnapshot,
) (*domain.Listing, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	price := *snap.Price
	timeLeft := normalizeTimeLeft(snap.TimeLeft)

	existing, ok := s.listings[snap.ItemID]
	if !ok {
		l := domain.Listing{
			ItemID:        snap.ItemID,
			Title:         snap.Title,
			Brand:         snap.Brand,
			CurrentPrice:  price,
			BuyItNowPrice: copyFloat(snap.BuyItNowPrice),
			TimeLeft:      copyString(timeLeft),
			URL:           snap.URL,
			ImageURL:      snap.ImageURL,
			FirstSeen:     now,
			LastUpdated:   now,
		}
		s.listings[snap.ItemID] = l
		s.appendObservation(snap.ItemID, price, now)
		return &l, true, nil
	}

	appended := existing.CurrentPrice != price
	existing.CurrentPrice = price
	existing.TimeLeft = copyString(timeLeft)
	existing.LastUpdated = now
	if snap.BuyItNowPrice != nil {
		existing.BuyItNowPrice = copyFloat(snap.BuyItNowPrice)
	}
	s.listings[snap.ItemID] = existing

	if appended {
		s.appendObservation(snap.ItemID, price, now)
	}

	l := existing
	return &l, appended, nil
}

func (s *MemoryStore) appendObservation(itemID string, price float64, ts time.Time) {
	s.history[itemID] = append(s.history[itemID], domain.PriceObservation{
		ItemID:    itemID,
		Price:     price,
		Timestamp: ts,
	})
}

// GetListing returns the listing for itemID, or ErrNotFound.
func (s *MemoryStore) GetListing(_ context.Context, itemID string) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[itemID]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", itemID, ErrNotFound)
	}
	return &l, nil
}

// ListActiveListings returns biddable listings ordered by first_seen.
func (s *MemoryStore) ListActiveListings(_ context.Context) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []domain.Listing
	for _, l := range s.listings {
		if l.Active() {
			active = append(active, l)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].FirstSeen.Equal(active[j].FirstSeen) {
			return active[i].ItemID < active[j].ItemID
		}
		return active[i].FirstSeen.Before(active[j].FirstSeen)
	})
	return active, nil
}

// PriceHistory returns the item's observations oldest first, annotated with
// the difference from the preceding observation. Unknown ids yield an empty
// slice.
func (s *MemoryStore) PriceHistory(
	_ context.Context,
	itemID string,
) ([]domain.PriceObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := s.history[itemID]
	history := make([]domain.PriceObservation, len(raw))
	for i, o := range raw {
		history[i] = o
		if i > 0 {
			change := o.Price - raw[i-1].Price
			history[i].PriceChange = &change
		}
	}
	return history, nil
}

// PriceStatsByItem returns max price and observation count per item.
func (s *MemoryStore) PriceStatsByItem(_ context.Context) (map[string]domain.PriceStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]domain.PriceStats, len(s.history))
	for itemID, obs := range s.history {
		ps := domain.PriceStats{Observations: len(obs)}
		for _, o := range obs {
			if o.Price > ps.MaxPrice {
				ps.MaxPrice = o.Price
			}
		}
		stats[itemID] = ps
	}
	return stats, nil
}

// RecordSale inserts a completed transaction, rejecting duplicates.
func (s *MemoryStore) RecordSale(_ context.Context, sale *domain.SoldItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sold[sale.ItemID]; ok {
		return fmt.Errorf("recording sale %s: %w", sale.ItemID, ErrDuplicateSale)
	}

	rec := *sale
	if rec.SoldDate.IsZero() {
		rec.SoldDate = s.nowFunc()
	}
	s.sold[sale.ItemID] = rec
	return nil
}

// SoldItemsSince returns sales completed at or after since, oldest first.
func (s *MemoryStore) SoldItemsSince(
	_ context.Context,
	since time.Time,
) ([]domain.SoldItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sold []domain.SoldItem
	for _, it := range s.sold {
		if !it.SoldDate.Before(since) {
			sold = append(sold, it)
		}
	}
	sort.Slice(sold, func(i, j int) bool {
		return sold[i].SoldDate.Before(sold[j].SoldDate)
	})
	return sold, nil
}

// BrandStatistics aggregates active listings and trailing-window sales for
// one brand.
func (s *MemoryStore) BrandStatistics(
	_ context.Context,
	brand string,
	windowDays int,
) (*domain.BrandStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &domain.BrandStats{Brand: brand, WindowDays: windowDays}

	var activePrices []float64
	for _, l := range s.listings {
		if l.Brand == brand && l.Active() {
			activePrices = append(activePrices, l.CurrentPrice)
		}
	}
	stats.ActiveListings = aggregate(activePrices)

	cutoff := s.nowFunc().AddDate(0, 0, -windowDays)
	var soldPrices []float64
	for _, it := range s.sold {
		if it.Brand == brand && !it.SoldDate.Before(cutoff) {
			soldPrices = append(soldPrices, it.FinalPrice)
		}
	}
	stats.SoldItems = aggregate(soldPrices)

	return stats, nil
}

// Migrate is a no-op: the memory store has no schema.
func (s *MemoryStore) Migrate(context.Context) error { return nil }

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() {}

func aggregate(prices []float64) domain.PriceAggregate {
	agg := domain.PriceAggregate{Count: len(prices)}
	if len(prices) == 0 {
		return agg
	}

	sum, minP, maxP := 0.0, prices[0], prices[0]
	for _, p := range prices {
		sum += p
		if p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
	}
	avg := sum / float64(len(prices))
	agg.AvgPrice, agg.MinPrice, agg.MaxPrice = &avg, &minP, &maxP
	return agg
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
