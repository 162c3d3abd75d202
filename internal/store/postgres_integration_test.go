//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"watch-deal-finder/internal/store"
	domain "watch-deal-finder/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("wdf_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func testSnapshot(itemID string, price float64) *domain.ListingSnapshot {
	return &domain.ListingSnapshot{
		ItemID:   itemID,
		Title:    "Seiko SKX007 Automatic Diver 200m",
		Brand:    "Seiko",
		Price:    floatPtr(price),
		TimeLeft: strPtr("2d 4h"),
		URL:      "https://www.ebay.com/itm/" + itemID,
		ImageURL: "https://i.ebayimg.com/images/g/test/s-l1600.jpg",
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_UpsertListing(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	t.Run("insert new listing records first observation", func(t *testing.T) {
		listing, appended, err := s.UpsertListing(ctx, testSnapshot("insert-1", 250.00))
		require.NoError(t, err)
		assert.True(t, appended)
		assert.Equal(t, "insert-1", listing.ItemID)
		assert.InDelta(t, 250.00, listing.CurrentPrice, 0.001)
		assert.False(t, listing.FirstSeen.IsZero())

		history, err := s.PriceHistory(ctx, "insert-1")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Nil(t, history[0].PriceChange)
	})

	t.Run("unchanged price does not grow history", func(t *testing.T) {
		_, _, err := s.UpsertListing(ctx, testSnapshot("same-1", 250.00))
		require.NoError(t, err)

		_, appended, err := s.UpsertListing(ctx, testSnapshot("same-1", 250.00))
		require.NoError(t, err)
		assert.False(t, appended)

		history, err := s.PriceHistory(ctx, "same-1")
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("changed price appends annotated observation", func(t *testing.T) {
		_, _, err := s.UpsertListing(ctx, testSnapshot("drop-1", 250.00))
		require.NoError(t, err)

		listing, appended, err := s.UpsertListing(ctx, testSnapshot("drop-1", 212.50))
		require.NoError(t, err)
		assert.True(t, appended)
		assert.InDelta(t, 212.50, listing.CurrentPrice, 0.001)

		history, err := s.PriceHistory(ctx, "drop-1")
		require.NoError(t, err)
		require.Len(t, history, 2)
		require.NotNil(t, history[1].PriceChange)
		assert.InDelta(t, -37.50, *history[1].PriceChange, 0.001)
	})

	t.Run("buy it now price survives snapshots without one", func(t *testing.T) {
		snap := testSnapshot("bin-1", 250.00)
		snap.BuyItNowPrice = floatPtr(320.00)
		_, _, err := s.UpsertListing(ctx, snap)
		require.NoError(t, err)

		listing, _, err := s.UpsertListing(ctx, testSnapshot("bin-1", 240.00))
		require.NoError(t, err)
		require.NotNil(t, listing.BuyItNowPrice)
		assert.InDelta(t, 320.00, *listing.BuyItNowPrice, 0.001)
	})

	t.Run("first seen is preserved across updates", func(t *testing.T) {
		first, _, err := s.UpsertListing(ctx, testSnapshot("seen-1", 100.00))
		require.NoError(t, err)

		second, _, err := s.UpsertListing(ctx, testSnapshot("seen-1", 90.00))
		require.NoError(t, err)
		assert.Equal(t, first.FirstSeen, second.FirstSeen)
		assert.False(t, second.LastUpdated.Before(first.LastUpdated))
	})
}

func TestPostgresStore_GetListing(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		_, _, err := s.UpsertListing(ctx, testSnapshot("get-1", 250.00))
		require.NoError(t, err)

		got, err := s.GetListing(ctx, "get-1")
		require.NoError(t, err)
		assert.Equal(t, "Seiko SKX007 Automatic Diver 200m", got.Title)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetListing(ctx, "nonexistent")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestPostgresStore_ListActiveListings(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, _, err := s.UpsertListing(ctx, testSnapshot("active-1", 100.00))
	require.NoError(t, err)

	ended := testSnapshot("ended-1", 200.00)
	ended.TimeLeft = strPtr("")
	_, _, err = s.UpsertListing(ctx, ended)
	require.NoError(t, err)

	active, err := s.ListActiveListings(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "active-1", active[0].ItemID)
}

func TestPostgresStore_PriceHistoryUnknownItem(t *testing.T) {
	s := setupPostgres(t)

	history, err := s.PriceHistory(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestPostgresStore_PriceStatsByItem(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	for _, price := range []float64{250.00, 260.00, 212.50} {
		_, _, err := s.UpsertListing(ctx, testSnapshot("stats-1", price))
		require.NoError(t, err)
	}

	stats, err := s.PriceStatsByItem(ctx)
	require.NoError(t, err)
	require.Contains(t, stats, "stats-1")
	assert.InDelta(t, 260.00, stats["stats-1"].MaxPrice, 0.001)
	assert.Equal(t, 3, stats["stats-1"].Observations)
}

func TestPostgresStore_RecordSale(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	sale := &domain.SoldItem{
		ItemID:     "sold-1",
		Title:      "Omega Seamaster 300",
		Brand:      "Omega",
		FinalPrice: 2400.00,
		SoldDate:   time.Now().AddDate(0, 0, -3),
	}
	require.NoError(t, s.RecordSale(ctx, sale))

	t.Run("duplicate is rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.RecordSale(ctx, sale), store.ErrDuplicateSale)
	})

	t.Run("window filter", func(t *testing.T) {
		sold, err := s.SoldItemsSince(ctx, time.Now().AddDate(0, 0, -7))
		require.NoError(t, err)
		require.Len(t, sold, 1)
		assert.Equal(t, "sold-1", sold[0].ItemID)

		sold, err = s.SoldItemsSince(ctx, time.Now().AddDate(0, 0, -1))
		require.NoError(t, err)
		assert.Empty(t, sold)
	})
}

func TestPostgresStore_BrandStatistics(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, _, err := s.UpsertListing(ctx, testSnapshot("brand-a", 200.00))
	require.NoError(t, err)
	_, _, err = s.UpsertListing(ctx, testSnapshot("brand-b", 400.00))
	require.NoError(t, err)

	require.NoError(t, s.RecordSale(ctx, &domain.SoldItem{
		ItemID:     "brand-sold",
		Title:      "Seiko SKX007",
		Brand:      "Seiko",
		FinalPrice: 280.00,
		SoldDate:   time.Now().AddDate(0, 0, -5),
	}))

	stats, err := s.BrandStatistics(ctx, "Seiko", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ActiveListings.Count)
	require.NotNil(t, stats.ActiveListings.AvgPrice)
	assert.InDelta(t, 300.00, *stats.ActiveListings.AvgPrice, 0.001)
	assert.Equal(t, 1, stats.SoldItems.Count)

	empty, err := s.BrandStatistics(ctx, "Rolex", 30)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.ActiveListings.Count)
	assert.Nil(t, empty.ActiveListings.AvgPrice)
}
