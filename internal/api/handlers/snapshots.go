package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"watch-deal-finder/internal/ingest"
	domain "watch-deal-finder/pkg/types"
)

// SnapshotsHandler handles snapshot ingestion.
type SnapshotsHandler struct {
	ingestor *ingest.Ingestor
}

// NewSnapshotsHandler creates a new SnapshotsHandler.
func NewSnapshotsHandler(in *ingest.Ingestor) *SnapshotsHandler {
	return &SnapshotsHandler{ingestor: in}
}

// SnapshotBody is the wire form of a listing snapshot. Field presence is
// checked by the ingest validator so that one response names every problem,
// not just the first schema failure.
type SnapshotBody struct {
	ItemID        string   `json:"item_id,omitempty"          doc:"Marketplace item identifier"`
	Title         string   `json:"title,omitempty"            doc:"Listing title"`
	Brand         string   `json:"brand,omitempty"            doc:"Watch brand"`
	Price         *float64 `json:"price,omitempty"            doc:"Current auction price"`
	BuyItNowPrice *float64 `json:"buy_it_now_price,omitempty" doc:"Buy-it-now price, if offered"`
	TimeLeft      *string  `json:"time_left,omitempty"        doc:"Remaining auction time; empty means ended"`
	URL           string   `json:"url,omitempty"              doc:"Listing URL"`
	ImageURL      string   `json:"image_url,omitempty"        doc:"Gallery image URL"`
}

// IngestSnapshotInput is the input for snapshot ingestion.
type IngestSnapshotInput struct {
	Body SnapshotBody
}

// IngestSnapshotOutput is the response for snapshot ingestion.
type IngestSnapshotOutput struct {
	Body struct {
		Listing      domain.Listing `json:"listing"`
		PriceChanged bool           `json:"price_changed"`
	}
}

// IngestSnapshot validates and stores one listing snapshot.
func (h *SnapshotsHandler) IngestSnapshot(
	ctx context.Context,
	input *IngestSnapshotInput,
) (*IngestSnapshotOutput, error) {
	snap := &domain.ListingSnapshot{
		ItemID:        input.Body.ItemID,
		Title:         input.Body.Title,
		Brand:         input.Body.Brand,
		Price:         input.Body.Price,
		BuyItNowPrice: input.Body.BuyItNowPrice,
		TimeLeft:      input.Body.TimeLeft,
		URL:           input.Body.URL,
		ImageURL:      input.Body.ImageURL,
	}

	listing, appended, err := h.ingestor.Ingest(ctx, snap)
	if err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			details := make([]error, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				details = append(details, &huma.ErrorDetail{
					Message:  f,
					Location: "body",
				})
			}
			return nil, huma.Error422UnprocessableEntity("invalid snapshot", details...)
		}
		return nil, huma.Error500InternalServerError("storing snapshot failed: " + err.Error())
	}

	resp := &IngestSnapshotOutput{}
	resp.Body.Listing = *listing
	resp.Body.PriceChanged = appended
	return resp, nil
}

// RegisterSnapshotRoutes registers snapshot endpoints with the Huma API.
func RegisterSnapshotRoutes(api huma.API, h *SnapshotsHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "ingest-snapshot",
		Method:        http.MethodPost,
		Path:          "/api/v1/snapshots",
		Summary:       "Ingest a listing snapshot",
		Description:   "Validates a snapshot, upserts the listing, and records a price observation when the price changed.",
		Tags:          []string{"snapshots"},
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusUnprocessableEntity},
	}, h.IngestSnapshot)
}
