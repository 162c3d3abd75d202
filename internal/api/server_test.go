package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"watch-deal-finder/internal/api"
	"watch-deal-finder/internal/detect"
	"watch-deal-finder/internal/store"
	"watch-deal-finder/pkg/logger"
)

func TestNewServer_OperationalEndpoints(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	e := api.NewServer(api.Options{
		Store:          s,
		Detector:       detect.NewDetector(s, detect.WithLogger(logger.Nop())),
		MinDropPercent: 10,
		Logger:         logger.Nop(),
	})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestNewServer_APIRoutesMounted(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	e := api.NewServer(api.Options{
		Store:          s,
		Detector:       detect.NewDetector(s, detect.WithLogger(logger.Nop())),
		MinDropPercent: 10,
		Logger:         logger.Nop(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/listings/unknown", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
