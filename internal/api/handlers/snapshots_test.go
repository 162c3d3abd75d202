package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch-deal-finder/internal/api/handlers"
	"watch-deal-finder/internal/ingest"
	"watch-deal-finder/internal/store"
	"watch-deal-finder/pkg/logger"
)

func newSnapshotAPI(t *testing.T) (*store.MemoryStore, humatest.TestAPI) {
	t.Helper()
	s := store.NewMemoryStore()
	_, api := humatest.New(t)
	handlers.RegisterSnapshotRoutes(api, handlers.NewSnapshotsHandler(
		ingest.NewIngestor(s, logger.Nop()),
	))
	return s, api
}

func snapshotBody(itemID string, price float64) map[string]any {
	return map[string]any{
		"item_id":   itemID,
		"title":     "Seiko SKX007 Automatic Diver",
		"brand":     "Seiko",
		"price":     price,
		"time_left": "2d 4h",
		"url":       "https://www.ebay.com/itm/" + itemID,
	}
}

func TestIngestSnapshot_Success(t *testing.T) {
	t.Parallel()

	_, api := newSnapshotAPI(t)

	resp := api.Post("/api/v1/snapshots", snapshotBody("itm-1", 250.00))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"price_changed":true`)
	assert.Contains(t, resp.Body.String(), "itm-1")
}

func TestIngestSnapshot_UnchangedPrice(t *testing.T) {
	t.Parallel()

	_, api := newSnapshotAPI(t)

	resp := api.Post("/api/v1/snapshots", snapshotBody("itm-1", 250.00))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Post("/api/v1/snapshots", snapshotBody("itm-1", 250.00))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"price_changed":false`)
}

func TestIngestSnapshot_ValidationReportsAllFields(t *testing.T) {
	t.Parallel()

	s, api := newSnapshotAPI(t)

	resp := api.Post("/api/v1/snapshots", map[string]any{
		"item_id": "itm-1",
		"price":   0,
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	body := resp.Body.String()
	assert.Contains(t, body, "title is required")
	assert.Contains(t, body, "brand is required")
	assert.Contains(t, body, "price must be positive")
	assert.Contains(t, body, "time_left is required")
	assert.Contains(t, body, "url is required")

	_, err := s.GetListing(context.Background(), "itm-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
