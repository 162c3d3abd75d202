// Package store defines the datastore abstraction for watch-deal-finder.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables testing without a running database.
package store

import (
	"context"
	"errors"
	"time"

	domain "watch-deal-finder/pkg/types"
)

// ErrNotFound is returned by single-row lookups when no row matches.
// Price history is the exception: an unknown item yields an empty
// sequence, because absence of history is a valid state, not a failure.
var ErrNotFound = errors.New("not found")

// ErrDuplicateSale is returned by RecordSale when a sale with the same
// item_id already exists. The archive is insert-only; callers treating
// ingestion as idempotent may ignore this error.
var ErrDuplicateSale = errors.New("sale already recorded")

// Store defines all data access operations for watch-deal-finder.
type Store interface {
	// UpsertListing applies one validated snapshot atomically: it inserts
	// a new listing plus its initial price observation, or updates the
	// mutable fields of an existing one and appends an observation only
	// when the stored price differs from the incoming one. The returned
	// bool reports whether an observation was appended. Snapshots must be
	// validated (ingest.Validate) before they reach the store.
	UpsertListing(ctx context.Context, snap *domain.ListingSnapshot) (*domain.Listing, bool, error)

	// GetListing returns the listing for itemID, or ErrNotFound.
	GetListing(ctx context.Context, itemID string) (*domain.Listing, error)

	// ListActiveListings returns all listings whose time_left is present.
	ListActiveListings(ctx context.Context) ([]domain.Listing, error)

	// PriceHistory returns the item's observations oldest first, each
	// annotated with the difference from its predecessor. Unknown ids
	// yield an empty slice, not an error.
	PriceHistory(ctx context.Context, itemID string) ([]domain.PriceObservation, error)

	// PriceStatsByItem returns max price and observation count for every
	// item that has history.
	PriceStatsByItem(ctx context.Context) (map[string]domain.PriceStats, error)

	// RecordSale inserts a completed transaction. Duplicate item_ids are
	// rejected with ErrDuplicateSale; existing rows are never overwritten.
	RecordSale(ctx context.Context, sale *domain.SoldItem) error

	// SoldItemsSince returns sales completed at or after the given time.
	SoldItemsSince(ctx context.Context, since time.Time) ([]domain.SoldItem, error)

	// BrandStatistics aggregates completed sales in the trailing window
	// and currently active listings for one brand.
	BrandStatistics(ctx context.Context, brand string, windowDays int) (*domain.BrandStats, error)

	// Migrate applies pending schema migrations.
	Migrate(ctx context.Context) error

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases storage resources.
	Close()
}
