// Package feed provides the marketplace listing feed client abstracted
// behind an interface for testability.
package feed

import (
	"context"

	domain "watch-deal-finder/pkg/types"
)

// SearchRequest defines the parameters for a brand search.
type SearchRequest struct {
	Brand  string
	Limit  int
	Offset int
}

// SearchResponse holds one page of feed results.
type SearchResponse struct {
	Snapshots []domain.ListingSnapshot
	Total     int
	Offset    int
	Limit     int
	HasMore   bool
}

// Source defines the interface for fetching listing snapshots from the
// marketplace feed.
type Source interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}
