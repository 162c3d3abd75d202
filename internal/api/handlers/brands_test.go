package handlers_test

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch-deal-finder/internal/api/handlers"
	"watch-deal-finder/internal/store"
)

func newBrandsAPI(t *testing.T) (*store.MemoryStore, humatest.TestAPI) {
	t.Helper()
	s := store.NewMemoryStore()
	_, api := humatest.New(t)
	handlers.RegisterBrandRoutes(api, handlers.NewBrandsHandler(s))
	return s, api
}

func TestBrandStats_Success(t *testing.T) {
	t.Parallel()

	s, api := newBrandsAPI(t)
	seedListing(t, s, "itm-1", 200.00)
	seedListing(t, s, "itm-2", 400.00)

	resp := api.Get("/api/v1/brands/Seiko/stats")
	require.Equal(t, http.StatusOK, resp.Code)

	body := resp.Body.String()
	assert.Contains(t, body, `"brand":"Seiko"`)
	assert.Contains(t, body, `"window_days":30`)
	assert.Contains(t, body, `"count":2`)
	assert.Contains(t, body, `"avg_price":300`)
}

func TestBrandStats_CustomWindow(t *testing.T) {
	t.Parallel()

	_, api := newBrandsAPI(t)

	resp := api.Get("/api/v1/brands/Omega/stats?window_days=90")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"window_days":90`)
}

func TestBrandStats_UnknownBrandIsEmpty(t *testing.T) {
	t.Parallel()

	_, api := newBrandsAPI(t)

	resp := api.Get("/api/v1/brands/Rolex/stats")
	require.Equal(t, http.StatusOK, resp.Code)

	body := resp.Body.String()
	assert.Contains(t, body, `"count":0`)
	assert.NotContains(t, body, "avg_price")
}
