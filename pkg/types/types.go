// Package domain defines the core business types for the watch deal finder.
package domain

import "time"

// Listing is the current snapshot of an externally observed marketplace item.
// There is exactly one Listing per ItemID; price history lives in
// PriceObservation rows.
type Listing struct {
	ItemID        string   `json:"item_id"                    db:"item_id"`
	Title         string   `json:"title"                      db:"title"`
	Brand         string   `json:"brand"                      db:"brand"`
	CurrentPrice  float64  `json:"current_price"              db:"current_price"`
	BuyItNowPrice *float64 `json:"buy_it_now_price,omitempty" db:"buy_it_now_price"`
	TimeLeft      *string  `json:"time_left,omitempty"        db:"time_left"`
	URL           string   `json:"url"                        db:"url"`
	ImageURL      string   `json:"image_url,omitempty"        db:"image_url"`

	FirstSeen   time.Time `json:"first_seen"   db:"first_seen"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// Active reports whether the listing is still biddable. A listing with no
// time_left has ended; the row is kept, never deleted.
func (l *Listing) Active() bool {
	return l.TimeLeft != nil
}

// PriceObservation is one immutable recorded price point in an item's
// history. PriceChange is the arithmetic difference from the immediately
// preceding observation, nil on the first row.
type PriceObservation struct {
	ItemID      string    `json:"item_id"                db:"item_id"`
	Price       float64   `json:"price"                  db:"price"`
	Timestamp   time.Time `json:"timestamp"              db:"timestamp"`
	PriceChange *float64  `json:"price_change,omitempty" db:"price_change"`
}

// SoldItem is a completed transaction, sourced independently from active
// listings and used as read-only market-reference data.
type SoldItem struct {
	ItemID            string    `json:"item_id"                       db:"item_id"`
	Title             string    `json:"title"                         db:"title"`
	Brand             string    `json:"brand"                         db:"brand"`
	FinalPrice        float64   `json:"final_price"                   db:"final_price"`
	SoldDate          time.Time `json:"sold_date"                     db:"sold_date"`
	Condition         *string   `json:"condition,omitempty"           db:"condition"`
	OriginalListingID *string   `json:"original_listing_id,omitempty" db:"original_listing_id"`
}

// ListingSnapshot is a raw listing observation as supplied by the ingestion
// source. Pointer fields distinguish absent from zero; validation lives in
// the ingest package.
type ListingSnapshot struct {
	ItemID        string   `json:"item_id"`
	Title         string   `json:"title"`
	Brand         string   `json:"brand"`
	Price         *float64 `json:"price,omitempty"`
	BuyItNowPrice *float64 `json:"buy_it_now_price,omitempty"`
	TimeLeft      *string  `json:"time_left,omitempty"`
	URL           string   `json:"url"`
	ImageURL      string   `json:"image_url,omitempty"`
}

// PriceStats aggregates an item's price history: the highest price ever
// observed and the number of observations.
type PriceStats struct {
	MaxPrice     float64 `json:"max_price"`
	Observations int     `json:"observations"`
}

// DealCandidate is an active listing that passed the detector's eligibility
// filter, annotated with its computed signals. AvgSoldPrice and
// PotentialProfitPercent are nil when no comparable sale exists.
type DealCandidate struct {
	ItemID        string   `json:"item_id"`
	Title         string   `json:"title"`
	Brand         string   `json:"brand"`
	CurrentPrice  float64  `json:"current_price"`
	BuyItNowPrice *float64 `json:"buy_it_now_price,omitempty"`
	TimeLeft      *string  `json:"time_left,omitempty"`
	URL           string   `json:"url"`

	MaxPrice               float64  `json:"max_price"`
	PriceDropPercent       float64  `json:"price_drop_percent"`
	ObservationCount       int      `json:"observation_count"`
	AvgSoldPrice           *float64 `json:"avg_sold_price,omitempty"`
	PotentialProfitPercent *float64 `json:"potential_profit_percent,omitempty"`
}

// PriceAggregate holds count/avg/min/max over a set of prices. The
// aggregates are nil when the set is empty.
type PriceAggregate struct {
	Count    int      `json:"count"`
	AvgPrice *float64 `json:"avg_price,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
}

// BrandStats is the market context for a single brand: aggregates over
// currently active listings and over sales completed in the trailing window.
type BrandStats struct {
	Brand          string         `json:"brand"`
	WindowDays     int            `json:"window_days"`
	ActiveListings PriceAggregate `json:"active_listings"`
	SoldItems      PriceAggregate `json:"sold_items"`
}
