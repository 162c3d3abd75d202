package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded alerts. It is used
// when no notification backend is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards alerts with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendDeal logs and discards a single alert.
func (n *NoOpNotifier) SendDeal(_ context.Context, alert DealAlert) error {
	n.log.Debug("notification discarded (no backend configured)",
		"item_id", alert.ItemID,
		"title", alert.Title,
		"drop_percent", alert.PriceDropPercent,
	)
	return nil
}

// SendDealBatch logs and discards a batch of alerts.
func (n *NoOpNotifier) SendDealBatch(_ context.Context, alerts []DealAlert) error {
	n.log.Debug("batch notification discarded (no backend configured)",
		"count", len(alerts),
	)
	return nil
}
