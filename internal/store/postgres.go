package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "watch-deal-finder/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// UpsertListing applies one snapshot inside a single transaction. The
// listing row is locked for the duration, so the price comparison and the
// conditional history append cannot race with a concurrent upsert for the
// same item.
func (s *PostgresStore) UpsertListing(
	ctx context.Context,
	snap *domain.ListingSnapshot,
) (*domain.Listing, bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("beginning upsert tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	price := *snap.Price
	timeLeft := normalizeTimeLeft(snap.TimeLeft)

	var storedPrice float64
	err = tx.QueryRow(ctx, queryLockListingPrice, snap.ItemID).Scan(&storedPrice)

	var (
		l        domain.Listing
		appended bool
	)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		args := pgx.NamedArgs{
			"item_id":          snap.ItemID,
			"title":            snap.Title,
			"brand":            snap.Brand,
			"current_price":    price,
			"buy_it_now_price": snap.BuyItNowPrice,
			"time_left":        timeLeft,
			"url":              snap.URL,
			"image_url":        nullIfEmpty(snap.ImageURL),
		}
		if err := scanListing(tx.QueryRow(ctx, queryInsertListing, args), &l); err != nil {
			return nil, false, fmt.Errorf("inserting listing %s: %w", snap.ItemID, err)
		}

		// First observation is always recorded.
		if _, err := tx.Exec(ctx, queryInsertObservation, snap.ItemID, price); err != nil {
			return nil, false, fmt.Errorf("appending initial observation for %s: %w", snap.ItemID, err)
		}
		appended = true

	case err != nil:
		return nil, false, fmt.Errorf("locking listing %s: %w", snap.ItemID, err)

	default:
		args := pgx.NamedArgs{
			"item_id":          snap.ItemID,
			"current_price":    price,
			"time_left":        timeLeft,
			"buy_it_now_price": snap.BuyItNowPrice,
		}
		if err := scanListing(tx.QueryRow(ctx, queryUpdateListing, args), &l); err != nil {
			return nil, false, fmt.Errorf("updating listing %s: %w", snap.ItemID, err)
		}

		// History tracks real price changes, not polling frequency.
		if storedPrice != price {
			if _, err := tx.Exec(ctx, queryInsertObservation, snap.ItemID, price); err != nil {
				return nil, false, fmt.Errorf("appending observation for %s: %w", snap.ItemID, err)
			}
			appended = true
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("committing upsert for %s: %w", snap.ItemID, err)
	}

	return &l, appended, nil
}

// GetListing retrieves a listing by its item ID.
func (s *PostgresStore) GetListing(ctx context.Context, itemID string) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := scanListing(s.pool.QueryRow(ctx, queryGetListing, itemID), l)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting listing %s: %w", itemID, err)
	}
	return l, nil
}

// ListActiveListings returns all listings that are still biddable.
func (s *PostgresStore) ListActiveListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := s.pool.Query(ctx, queryListActiveListings)
	if err != nil {
		return nil, fmt.Errorf("querying active listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// PriceHistory returns an item's observations oldest first with the
// per-row price change computed by the database (LAG window).
func (s *PostgresStore) PriceHistory(
	ctx context.Context,
	itemID string,
) ([]domain.PriceObservation, error) {
	rows, err := s.pool.Query(ctx, queryPriceHistory, itemID)
	if err != nil {
		return nil, fmt.Errorf("querying price history for %s: %w", itemID, err)
	}
	defer rows.Close()

	history := []domain.PriceObservation{}
	for rows.Next() {
		var o domain.PriceObservation
		if err := rows.Scan(&o.ItemID, &o.Price, &o.Timestamp, &o.PriceChange); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		history = append(history, o)
	}

	return history, rows.Err()
}

// PriceStatsByItem returns max price and observation count per item.
func (s *PostgresStore) PriceStatsByItem(ctx context.Context) (map[string]domain.PriceStats, error) {
	rows, err := s.pool.Query(ctx, queryPriceStatsByItem)
	if err != nil {
		return nil, fmt.Errorf("querying price stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]domain.PriceStats)
	for rows.Next() {
		var (
			itemID string
			ps     domain.PriceStats
		)
		if err := rows.Scan(&itemID, &ps.MaxPrice, &ps.Observations); err != nil {
			return nil, fmt.Errorf("scanning price stats: %w", err)
		}
		stats[itemID] = ps
	}

	return stats, rows.Err()
}

// RecordSale inserts a completed transaction, rejecting duplicates.
func (s *PostgresStore) RecordSale(ctx context.Context, sale *domain.SoldItem) error {
	soldDate := sale.SoldDate
	if soldDate.IsZero() {
		soldDate = time.Now()
	}

	args := pgx.NamedArgs{
		"item_id":             sale.ItemID,
		"title":               sale.Title,
		"brand":               sale.Brand,
		"final_price":         sale.FinalPrice,
		"sold_date":           soldDate,
		"condition":           sale.Condition,
		"original_listing_id": sale.OriginalListingID,
	}

	tag, err := s.pool.Exec(ctx, queryInsertSoldItem, args)
	if err != nil {
		return fmt.Errorf("recording sale %s: %w", sale.ItemID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recording sale %s: %w", sale.ItemID, ErrDuplicateSale)
	}
	return nil
}

// SoldItemsSince returns sales completed at or after since.
func (s *PostgresStore) SoldItemsSince(
	ctx context.Context,
	since time.Time,
) ([]domain.SoldItem, error) {
	rows, err := s.pool.Query(ctx, querySoldItemsSince, since)
	if err != nil {
		return nil, fmt.Errorf("querying sold items: %w", err)
	}
	defer rows.Close()

	var sold []domain.SoldItem
	for rows.Next() {
		var it domain.SoldItem
		if err := rows.Scan(
			&it.ItemID, &it.Title, &it.Brand, &it.FinalPrice,
			&it.SoldDate, &it.Condition, &it.OriginalListingID,
		); err != nil {
			return nil, fmt.Errorf("scanning sold item: %w", err)
		}
		sold = append(sold, it)
	}

	return sold, rows.Err()
}

// BrandStatistics aggregates active listings and trailing-window sales for
// one brand.
func (s *PostgresStore) BrandStatistics(
	ctx context.Context,
	brand string,
	windowDays int,
) (*domain.BrandStats, error) {
	stats := &domain.BrandStats{Brand: brand, WindowDays: windowDays}

	err := s.pool.QueryRow(ctx, queryBrandActiveStats, brand).Scan(
		&stats.ActiveListings.Count,
		&stats.ActiveListings.AvgPrice,
		&stats.ActiveListings.MinPrice,
		&stats.ActiveListings.MaxPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("querying active stats for %s: %w", brand, err)
	}

	cutoff := time.Now().AddDate(0, 0, -windowDays)
	err = s.pool.QueryRow(ctx, queryBrandSoldStats, brand, cutoff).Scan(
		&stats.SoldItems.Count,
		&stats.SoldItems.AvgPrice,
		&stats.SoldItems.MinPrice,
		&stats.SoldItems.MaxPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sold stats for %s: %w", brand, err)
	}

	return stats, nil
}

// scannable abstracts pgx.Row and pgx.Rows for reuse.
type scannable interface {
	Scan(dest ...any) error
}

func scanListing(row scannable, l *domain.Listing) error {
	return row.Scan(
		&l.ItemID, &l.Title, &l.Brand, &l.CurrentPrice, &l.BuyItNowPrice,
		&l.TimeLeft, &l.URL, &l.ImageURL, &l.FirstSeen, &l.LastUpdated,
	)
}

// normalizeTimeLeft maps an empty duration string onto NULL: a snapshot may
// carry the field with no value to mark the listing as ended.
func normalizeTimeLeft(tl *string) *string {
	if tl == nil || *tl == "" {
		return nil
	}
	return tl
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
