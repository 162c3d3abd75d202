// Package ingest validates listing snapshots and applies them to the store.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"watch-deal-finder/internal/metrics"
	"watch-deal-finder/internal/store"
	domain "watch-deal-finder/pkg/types"
)

// Ingestor is the single write path for listing snapshots. Invalid
// snapshots are rejected before they reach the store.
type Ingestor struct {
	store store.Store
	log   *slog.Logger
}

// NewIngestor creates an Ingestor backed by s.
func NewIngestor(s store.Store, log *slog.Logger) *Ingestor {
	if log == nil {
		log = slog.Default()
	}
	return &Ingestor{store: s, log: log}
}

// Ingest validates snap and upserts it. It returns the stored listing and
// whether a new price observation was appended. Validation failures return
// a *ValidationError and leave the store untouched.
func (in *Ingestor) Ingest(
	ctx context.Context,
	snap *domain.ListingSnapshot,
) (*domain.Listing, bool, error) {
	if err := Validate(snap); err != nil {
		metrics.ValidationFailuresTotal.Inc()
		return nil, false, err
	}

	listing, appended, err := in.store.UpsertListing(ctx, snap)
	if err != nil {
		metrics.IngestionErrorsTotal.Inc()
		return nil, false, fmt.Errorf("upserting listing %s: %w", snap.ItemID, err)
	}

	metrics.SnapshotsIngestedTotal.Inc()
	if appended {
		metrics.PriceChangesTotal.Inc()
		in.log.Debug("price observation recorded",
			"item_id", listing.ItemID,
			"price", listing.CurrentPrice,
		)
	}

	return listing, appended, nil
}
