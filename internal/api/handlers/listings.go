package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"watch-deal-finder/internal/store"
	domain "watch-deal-finder/pkg/types"
)

// ListingsHandler handles listing and price-history query endpoints.
type ListingsHandler struct {
	store store.Store
}

// NewListingsHandler creates a new ListingsHandler.
func NewListingsHandler(s store.Store) *ListingsHandler {
	return &ListingsHandler{store: s}
}

// GetListingInput is the input for getting a single listing.
type GetListingInput struct {
	ItemID string `path:"item_id" doc:"Marketplace item identifier"`
}

// GetListingOutput is the response for getting a single listing.
type GetListingOutput struct {
	Body domain.Listing
}

// PriceHistoryInput is the input for a price-history query.
type PriceHistoryInput struct {
	ItemID string `path:"item_id" doc:"Marketplace item identifier"`
}

// PriceHistoryOutput is the response for a price-history query.
type PriceHistoryOutput struct {
	Body struct {
		ItemID  string                    `json:"item_id"`
		History []domain.PriceObservation `json:"history"`
	}
}

// GetListing returns a single listing by item ID.
func (h *ListingsHandler) GetListing(
	ctx context.Context,
	input *GetListingInput,
) (*GetListingOutput, error) {
	listing, err := h.store.GetListing(ctx, input.ItemID)
	if err != nil {
		return nil, huma.Error404NotFound("listing not found")
	}
	return &GetListingOutput{Body: *listing}, nil
}

// PriceHistory returns the full observation sequence for an item, oldest
// first. Unknown items yield an empty history, not an error.
func (h *ListingsHandler) PriceHistory(
	ctx context.Context,
	input *PriceHistoryInput,
) (*PriceHistoryOutput, error) {
	history, err := h.store.PriceHistory(ctx, input.ItemID)
	if err != nil {
		return nil, huma.Error500InternalServerError("history query failed: " + err.Error())
	}

	resp := &PriceHistoryOutput{}
	resp.Body.ItemID = input.ItemID
	resp.Body.History = history
	return resp, nil
}

// RegisterListingRoutes registers listing endpoints with the Huma API.
func RegisterListingRoutes(api huma.API, h *ListingsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-listing",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{item_id}",
		Summary:     "Get a listing",
		Description: "Returns a single listing by its marketplace item identifier.",
		Tags:        []string{"listings"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetListing)

	huma.Register(api, huma.Operation{
		OperationID: "get-price-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{item_id}/history",
		Summary:     "Get price history",
		Description: "Returns every recorded price observation for an item, oldest first.",
		Tags:        []string{"listings"},
	}, h.PriceHistory)
}
