package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"watch-deal-finder/internal/detect"
	domain "watch-deal-finder/pkg/types"
)

// DealsHandler runs on-demand deal detection.
type DealsHandler struct {
	detector       *detect.Detector
	minDropPercent float64
}

// NewDealsHandler creates a new DealsHandler. minDropPercent is the default
// drop filter applied when the request does not specify one.
func NewDealsHandler(d *detect.Detector, minDropPercent float64) *DealsHandler {
	return &DealsHandler{detector: d, minDropPercent: minDropPercent}
}

// ListDealsInput is the input for a deal query. A negative min_drop means
// the configured threshold applies.
type ListDealsInput struct {
	MinDrop float64 `query:"min_drop" default:"-1" doc:"Minimum price drop percent (negative for the configured threshold)"`
}

// ListDealsOutput is the response for a deal query.
type ListDealsOutput struct {
	Body struct {
		Deals []domain.DealCandidate `json:"deals"`
		Total int                    `json:"total"`
	}
}

// ListDeals evaluates all active listings and returns deal candidates whose
// price drop meets the threshold, ranked best first.
func (h *DealsHandler) ListDeals(
	ctx context.Context,
	input *ListDealsInput,
) (*ListDealsOutput, error) {
	candidates, err := h.detector.Detect(ctx)
	if err != nil {
		var ierr *detect.InvariantError
		if !errors.As(err, &ierr) {
			return nil, huma.Error500InternalServerError("detection failed: " + err.Error())
		}
		// Violations are logged by the detector; the remaining candidates
		// are still served.
	}

	minDrop := input.MinDrop
	if minDrop < 0 {
		minDrop = h.minDropPercent
	}

	deals := make([]domain.DealCandidate, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.PriceDropPercent >= minDrop {
			deals = append(deals, *c)
		}
	}

	resp := &ListDealsOutput{}
	resp.Body.Deals = deals
	resp.Body.Total = len(deals)
	return resp, nil
}

// RegisterDealRoutes registers deal endpoints with the Huma API.
func RegisterDealRoutes(api huma.API, h *DealsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-deals",
		Method:      http.MethodGet,
		Path:        "/api/v1/deals",
		Summary:     "List deal candidates",
		Description: "Evaluates all active listings and returns candidates ranked by potential profit, then price drop.",
		Tags:        []string{"deals"},
	}, h.ListDeals)
}
