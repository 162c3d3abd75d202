package notify

import (
	"context"
	"errors"
)

// MultiNotifier fans alerts out to several notifiers. Every target is
// attempted even when an earlier one fails; failures are joined.
type MultiNotifier struct {
	targets []Notifier
}

// NewMultiNotifier creates a notifier that forwards to all targets.
func NewMultiNotifier(targets ...Notifier) *MultiNotifier {
	return &MultiNotifier{targets: targets}
}

// SendDeal forwards the alert to every target.
func (m *MultiNotifier) SendDeal(ctx context.Context, deal DealAlert) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.SendDeal(ctx, deal); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendDealBatch forwards the batch to every target.
func (m *MultiNotifier) SendDealBatch(ctx context.Context, deals []DealAlert) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.SendDealBatch(ctx, deals); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
