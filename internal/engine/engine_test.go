package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch-deal-finder/internal/feed"
	"watch-deal-finder/internal/metrics"
	"watch-deal-finder/internal/notify"
	"watch-deal-finder/internal/store"
	"watch-deal-finder/pkg/logger"
	domain "watch-deal-finder/pkg/types"
)

type fakeSource struct {
	pages    map[string][]domain.ListingSnapshot
	searched []string
	err      error
}

func (f *fakeSource) Search(_ context.Context, req feed.SearchRequest) (*feed.SearchResponse, error) {
	f.searched = append(f.searched, req.Brand)
	if f.err != nil {
		return nil, f.err
	}
	return &feed.SearchResponse{Snapshots: f.pages[req.Brand]}, nil
}

type fakeNotifier struct {
	singles []notify.DealAlert
	batches [][]notify.DealAlert
	err     error
}

func (f *fakeNotifier) SendDeal(_ context.Context, alert notify.DealAlert) error {
	if f.err != nil {
		return f.err
	}
	f.singles = append(f.singles, alert)
	return nil
}

func (f *fakeNotifier) SendDealBatch(_ context.Context, alerts []notify.DealAlert) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, alerts)
	return nil
}

func ptrF(f float64) *float64 { return &f }
func ptrS(s string) *string   { return &s }

func snap(itemID, brand string, price float64) domain.ListingSnapshot {
	return domain.ListingSnapshot{
		ItemID:   itemID,
		Title:    brand + " " + itemID,
		Brand:    brand,
		Price:    ptrF(price),
		TimeLeft: ptrS("2d 4h"),
		URL:      "https://example.com/itm/" + itemID,
	}
}

func TestEngine_RunScan(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	src := &fakeSource{
		pages: map[string][]domain.ListingSnapshot{
			"Seiko": {snap("s-1", "Seiko", 250.00), snap("s-2", "Seiko", 180.00)},
			"Omega": {snap("o-1", "Omega", 2400.00)},
		},
	}

	eng := NewEngine(s, src, &fakeNotifier{},
		WithLogger(logger.Nop()),
		WithBrands([]string{"Seiko", "Omega"}),
		WithStaggerOffset(0),
	)

	require.NoError(t, eng.RunScan(context.Background()))
	assert.Equal(t, []string{"Seiko", "Omega"}, src.searched)

	active, err := s.ListActiveListings(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestEngine_RunScanSkipsInvalidSnapshots(t *testing.T) {
	t.Parallel()

	bad := snap("bad-1", "Seiko", 250.00)
	bad.Price = nil

	s := store.NewMemoryStore()
	src := &fakeSource{
		pages: map[string][]domain.ListingSnapshot{
			"Seiko": {bad, snap("good-1", "Seiko", 250.00)},
		},
	}

	eng := NewEngine(s, src, &fakeNotifier{},
		WithLogger(logger.Nop()),
		WithBrands([]string{"Seiko"}),
		WithStaggerOffset(0),
	)

	require.NoError(t, eng.RunScan(context.Background()))

	active, err := s.ListActiveListings(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "good-1", active[0].ItemID)
}

func TestEngine_RunScanStopsOnDailyLimit(t *testing.T) {
	t.Parallel()

	src := &fakeSource{err: feed.ErrDailyLimitReached}

	eng := NewEngine(store.NewMemoryStore(), src, &fakeNotifier{},
		WithLogger(logger.Nop()),
		WithBrands([]string{"Seiko", "Omega", "Rolex"}),
		WithStaggerOffset(0),
	)

	require.NoError(t, eng.RunScan(context.Background()))
	// The first failure ends the scan; remaining brands are not attempted.
	assert.Equal(t, []string{"Seiko"}, src.searched)
}

func TestEngine_RunScanContinuesPastBrandFailure(t *testing.T) {
	t.Parallel()

	src := &fakeSource{err: errors.New("upstream 502")}

	eng := NewEngine(store.NewMemoryStore(), src, &fakeNotifier{},
		WithLogger(logger.Nop()),
		WithBrands([]string{"Seiko", "Omega"}),
		WithStaggerOffset(0),
	)

	require.NoError(t, eng.RunScan(context.Background()))
	assert.Equal(t, []string{"Seiko", "Omega"}, src.searched)
}

type failingUpsertStore struct {
	*store.MemoryStore
}

func (*failingUpsertStore) UpsertListing(
	context.Context,
	*domain.ListingSnapshot,
) (*domain.Listing, bool, error) {
	return nil, false, errors.New("connection refused")
}

func TestEngine_RunScanCountsUpsertErrorOnce(t *testing.T) {
	t.Parallel()

	s := &failingUpsertStore{MemoryStore: store.NewMemoryStore()}
	src := &fakeSource{
		pages: map[string][]domain.ListingSnapshot{
			"Seiko": {snap("s-1", "Seiko", 250.00)},
		},
	}

	eng := NewEngine(s, src, &fakeNotifier{},
		WithLogger(logger.Nop()),
		WithBrands([]string{"Seiko"}),
		WithStaggerOffset(0),
	)

	before := testutil.ToFloat64(metrics.IngestionErrorsTotal)
	require.NoError(t, eng.RunScan(context.Background()))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.IngestionErrorsTotal))
}

func seedDeal(t *testing.T, s *store.MemoryStore, itemID string, prices ...float64) {
	t.Helper()
	for _, p := range prices {
		sn := snap(itemID, "Seiko", p)
		_, _, err := s.UpsertListing(context.Background(), &sn)
		require.NoError(t, err)
	}
}

func TestEngine_RunDetectionNotifiesSingles(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	seedDeal(t, s, "deal-1", 250.00, 212.50) // 15% drop

	n := &fakeNotifier{}
	eng := NewEngine(s, &fakeSource{}, n, WithLogger(logger.Nop()))

	require.NoError(t, eng.RunDetection(context.Background()))
	require.Len(t, n.singles, 1)
	assert.Empty(t, n.batches)
	assert.Equal(t, "deal-1", n.singles[0].ItemID)
	assert.Equal(t, 15.0, n.singles[0].PriceDropPercent)
}

func TestEngine_RunDetectionBatchesLargeSets(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	for i := 0; i < 5; i++ {
		seedDeal(t, s, "deal-"+string(rune('a'+i)), 250.00, 200.00) // 20% drops
	}

	n := &fakeNotifier{}
	eng := NewEngine(s, &fakeSource{}, n, WithLogger(logger.Nop()))

	require.NoError(t, eng.RunDetection(context.Background()))
	assert.Empty(t, n.singles)
	require.Len(t, n.batches, 1)
	assert.Len(t, n.batches[0], 5)
}

func TestEngine_RunDetectionHonorsMinDrop(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	seedDeal(t, s, "deal-1", 250.00, 212.50) // 15% drop

	n := &fakeNotifier{}
	eng := NewEngine(s, &fakeSource{}, n,
		WithLogger(logger.Nop()),
		WithMinDropPercent(20),
	)

	require.NoError(t, eng.RunDetection(context.Background()))
	assert.Empty(t, n.singles)
	assert.Empty(t, n.batches)
}

func TestEngine_RunDetectionMinDropGatesComparableDeals(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	// 5% drop: eligible only through the comparable-sale signal.
	seedDeal(t, s, "deal-1", 100.00, 95.00)
	require.NoError(t, s.RecordSale(context.Background(), &domain.SoldItem{
		ItemID:     "sold-1",
		Title:      "Seiko deal-1 box and papers",
		Brand:      "Seiko",
		FinalPrice: 200.00,
		SoldDate:   time.Now(),
	}))

	n := &fakeNotifier{}
	eng := NewEngine(s, &fakeSource{}, n,
		WithLogger(logger.Nop()),
		WithMinDropPercent(10),
	)

	// The candidate undercuts comparable sales, but a 5% drop does not
	// clear the forwarding threshold.
	require.NoError(t, eng.RunDetection(context.Background()))
	assert.Empty(t, n.singles)
	assert.Empty(t, n.batches)
}

func TestEngine_RunDetectionNotificationFailure(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	seedDeal(t, s, "deal-1", 250.00, 212.50)

	n := &fakeNotifier{err: errors.New("webhook down")}
	eng := NewEngine(s, &fakeSource{}, n, WithLogger(logger.Nop()))

	err := eng.RunDetection(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook down")
}

func TestEngine_RunDetectionEmptyStore(t *testing.T) {
	t.Parallel()

	n := &fakeNotifier{}
	eng := NewEngine(store.NewMemoryStore(), &fakeSource{}, n, WithLogger(logger.Nop()))

	require.NoError(t, eng.RunDetection(context.Background()))
	assert.Empty(t, n.singles)
	assert.Empty(t, n.batches)
}
