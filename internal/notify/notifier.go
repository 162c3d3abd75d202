// Package notify defines the notification interface and implementations
// for deal alert delivery.
package notify

import (
	"context"
	"fmt"

	domain "watch-deal-finder/pkg/types"
)

// DealAlert contains the data needed to deliver a single deal notification.
type DealAlert struct {
	ItemID                 string
	Title                  string
	Brand                  string
	URL                    string
	ImageURL               string
	CurrentPrice           float64
	MaxPrice               float64
	PriceDropPercent       float64
	AvgSoldPrice           *float64
	PotentialProfitPercent *float64
}

// FromCandidate converts a detection result into an alert payload.
func FromCandidate(c *domain.DealCandidate) DealAlert {
	return DealAlert{
		ItemID:                 c.ItemID,
		Title:                  c.Title,
		Brand:                  c.Brand,
		URL:                    c.URL,
		CurrentPrice:           c.CurrentPrice,
		MaxPrice:               c.MaxPrice,
		PriceDropPercent:       c.PriceDropPercent,
		AvgSoldPrice:           c.AvgSoldPrice,
		PotentialProfitPercent: c.PotentialProfitPercent,
	}
}

// Notifier defines the interface for sending deal notifications.
type Notifier interface {
	SendDeal(ctx context.Context, alert DealAlert) error
	SendDealBatch(ctx context.Context, alerts []DealAlert) error
}

func formatPrice(f float64) string {
	return fmt.Sprintf("$%.2f", f)
}

func formatPercent(f float64) string {
	return fmt.Sprintf("%.2f%%", f)
}
