package ingest

import (
	"fmt"
	"strings"

	domain "watch-deal-finder/pkg/types"
)

// ValidationError reports every problem found in a snapshot, not just the
// first, so callers can surface the complete list to the feed operator.
type ValidationError struct {
	ItemID string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid snapshot %q: %s", e.ItemID, strings.Join(e.Fields, ", "))
}

// Validate checks that a snapshot carries every field the store requires.
// It returns a *ValidationError naming all missing or invalid fields, or
// nil when the snapshot is acceptable.
func Validate(snap *domain.ListingSnapshot) error {
	var fields []string

	if snap.ItemID == "" {
		fields = append(fields, "item_id is required")
	}
	if snap.Title == "" {
		fields = append(fields, "title is required")
	}
	if snap.Brand == "" {
		fields = append(fields, "brand is required")
	}
	switch {
	case snap.Price == nil:
		fields = append(fields, "price is required")
	case *snap.Price <= 0:
		fields = append(fields, "price must be positive")
	}
	if snap.TimeLeft == nil {
		fields = append(fields, "time_left is required")
	}
	if snap.URL == "" {
		fields = append(fields, "url is required")
	}

	if len(fields) > 0 {
		return &ValidationError{ItemID: snap.ItemID, Fields: fields}
	}
	return nil
}
