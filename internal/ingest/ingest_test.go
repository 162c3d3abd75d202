package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch-deal-finder/internal/store"
	"watch-deal-finder/pkg/logger"
	domain "watch-deal-finder/pkg/types"
)

func ptrF(f float64) *float64 { return &f }
func ptrS(s string) *string   { return &s }

func validSnapshot() *domain.ListingSnapshot {
	return &domain.ListingSnapshot{
		ItemID:   "itm-1",
		Title:    "Seiko SKX007 Automatic Diver",
		Brand:    "Seiko",
		Price:    ptrF(250.00),
		TimeLeft: ptrS("2d 4h"),
		URL:      "https://example.com/itm/itm-1",
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(*domain.ListingSnapshot)
		wantFields []string
	}{
		{
			name:   "valid snapshot",
			mutate: func(s *domain.ListingSnapshot) {},
		},
		{
			name:       "missing item_id",
			mutate:     func(s *domain.ListingSnapshot) { s.ItemID = "" },
			wantFields: []string{"item_id is required"},
		},
		{
			name:       "missing title",
			mutate:     func(s *domain.ListingSnapshot) { s.Title = "" },
			wantFields: []string{"title is required"},
		},
		{
			name:       "missing brand",
			mutate:     func(s *domain.ListingSnapshot) { s.Brand = "" },
			wantFields: []string{"brand is required"},
		},
		{
			name:       "missing price",
			mutate:     func(s *domain.ListingSnapshot) { s.Price = nil },
			wantFields: []string{"price is required"},
		},
		{
			name:       "zero price",
			mutate:     func(s *domain.ListingSnapshot) { s.Price = ptrF(0) },
			wantFields: []string{"price must be positive"},
		},
		{
			name:       "negative price",
			mutate:     func(s *domain.ListingSnapshot) { s.Price = ptrF(-5) },
			wantFields: []string{"price must be positive"},
		},
		{
			name:       "missing time_left",
			mutate:     func(s *domain.ListingSnapshot) { s.TimeLeft = nil },
			wantFields: []string{"time_left is required"},
		},
		{
			name:       "missing url",
			mutate:     func(s *domain.ListingSnapshot) { s.URL = "" },
			wantFields: []string{"url is required"},
		},
		{
			name: "all fields reported at once",
			mutate: func(s *domain.ListingSnapshot) {
				*s = domain.ListingSnapshot{}
			},
			wantFields: []string{
				"item_id is required",
				"title is required",
				"brand is required",
				"price is required",
				"time_left is required",
				"url is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snap := validSnapshot()
			tt.mutate(snap)

			err := Validate(snap)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantFields, verr.Fields)
		})
	}
}

func TestIngestor_Ingest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("valid snapshot reaches the store", func(t *testing.T) {
		t.Parallel()

		s := store.NewMemoryStore()
		in := NewIngestor(s, logger.Nop())

		listing, appended, err := in.Ingest(ctx, validSnapshot())
		require.NoError(t, err)
		assert.True(t, appended)
		assert.Equal(t, "itm-1", listing.ItemID)

		got, err := s.GetListing(ctx, "itm-1")
		require.NoError(t, err)
		assert.Equal(t, 250.00, got.CurrentPrice)
	})

	t.Run("invalid snapshot leaves the store untouched", func(t *testing.T) {
		t.Parallel()

		s := store.NewMemoryStore()
		in := NewIngestor(s, logger.Nop())

		snap := validSnapshot()
		snap.Price = nil
		snap.Brand = ""

		_, _, err := in.Ingest(ctx, snap)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"brand is required", "price is required"}, verr.Fields)

		_, err = s.GetListing(ctx, "itm-1")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("repeat snapshot reports appended flag", func(t *testing.T) {
		t.Parallel()

		s := store.NewMemoryStore()
		in := NewIngestor(s, logger.Nop())

		_, appended, err := in.Ingest(ctx, validSnapshot())
		require.NoError(t, err)
		assert.True(t, appended)

		_, appended, err = in.Ingest(ctx, validSnapshot())
		require.NoError(t, err)
		assert.False(t, appended)

		drop := validSnapshot()
		drop.Price = ptrF(212.50)
		_, appended, err = in.Ingest(ctx, drop)
		require.NoError(t, err)
		assert.True(t, appended)
	})
}
