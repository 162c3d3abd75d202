package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"watch-deal-finder/internal/store"
	domain "watch-deal-finder/pkg/types"
)

const defaultWindowDays = 30

// BrandsHandler serves per-brand market statistics.
type BrandsHandler struct {
	store store.Store
}

// NewBrandsHandler creates a new BrandsHandler.
func NewBrandsHandler(s store.Store) *BrandsHandler {
	return &BrandsHandler{store: s}
}

// BrandStatsInput is the input for a brand statistics query.
type BrandStatsInput struct {
	Brand      string `path:"brand"        doc:"Watch brand, exact match"`
	WindowDays int    `query:"window_days" doc:"Trailing window for sold items (default 30)" minimum:"1"`
}

// BrandStatsOutput is the response for a brand statistics query.
type BrandStatsOutput struct {
	Body domain.BrandStats
}

// BrandStats aggregates active listings and recent sales for one brand.
func (h *BrandsHandler) BrandStats(
	ctx context.Context,
	input *BrandStatsInput,
) (*BrandStatsOutput, error) {
	windowDays := input.WindowDays
	if windowDays == 0 {
		windowDays = defaultWindowDays
	}

	stats, err := h.store.BrandStatistics(ctx, input.Brand, windowDays)
	if err != nil {
		return nil, huma.Error500InternalServerError("brand stats query failed: " + err.Error())
	}

	return &BrandStatsOutput{Body: *stats}, nil
}

// RegisterBrandRoutes registers brand endpoints with the Huma API.
func RegisterBrandRoutes(api huma.API, h *BrandsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "brand-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/brands/{brand}/stats",
		Summary:     "Get brand statistics",
		Description: "Returns count, average, min, and max prices across active listings and recent sales for a brand.",
		Tags:        []string{"brands"},
	}, h.BrandStats)
}
