package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"watch-deal-finder/internal/store"
	domain "watch-deal-finder/pkg/types"
)

// SoldHandler handles the sold-items archive.
type SoldHandler struct {
	store store.Store
}

// NewSoldHandler creates a new SoldHandler.
func NewSoldHandler(s store.Store) *SoldHandler {
	return &SoldHandler{store: s}
}

// RecordSaleInput is the input for archiving a completed sale.
type RecordSaleInput struct {
	Body struct {
		ItemID            string     `json:"item_id"    doc:"Marketplace item identifier"    required:"true"`
		Title             string     `json:"title"      doc:"Listing title at time of sale"  required:"true"`
		Brand             string     `json:"brand"      doc:"Watch brand"                    required:"true"`
		FinalPrice        float64    `json:"final_price" doc:"Final transaction price"       required:"true" exclusiveMinimum:"0"`
		SoldDate          *time.Time `json:"sold_date,omitempty" doc:"Completion time; defaults to now"`
		Condition         *string    `json:"condition,omitempty" doc:"Item condition"`
		OriginalListingID *string    `json:"original_listing_id,omitempty" doc:"Listing this sale originated from"`
	}
}

// RecordSaleOutput is the response for archiving a sale.
type RecordSaleOutput struct {
	Body StatusResponse
}

// RecordSale archives a completed transaction. Re-recording the same item
// returns 409.
func (h *SoldHandler) RecordSale(
	ctx context.Context,
	input *RecordSaleInput,
) (*RecordSaleOutput, error) {
	sale := &domain.SoldItem{
		ItemID:            input.Body.ItemID,
		Title:             input.Body.Title,
		Brand:             input.Body.Brand,
		FinalPrice:        input.Body.FinalPrice,
		Condition:         input.Body.Condition,
		OriginalListingID: input.Body.OriginalListingID,
	}
	if input.Body.SoldDate != nil {
		sale.SoldDate = *input.Body.SoldDate
	}

	if err := h.store.RecordSale(ctx, sale); err != nil {
		if errors.Is(err, store.ErrDuplicateSale) {
			return nil, huma.Error409Conflict("sale already recorded for item " + sale.ItemID)
		}
		return nil, huma.Error500InternalServerError("recording sale failed: " + err.Error())
	}

	return &RecordSaleOutput{Body: StatusResponse{Status: "recorded"}}, nil
}

// RegisterSoldRoutes registers sold-item endpoints with the Huma API.
func RegisterSoldRoutes(api huma.API, h *SoldHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "record-sale",
		Method:        http.MethodPost,
		Path:          "/api/v1/sold",
		Summary:       "Record a completed sale",
		Description:   "Archives a completed transaction for use as comparable market data.",
		Tags:          []string{"sold"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusConflict},
	}, h.RecordSale)
}
