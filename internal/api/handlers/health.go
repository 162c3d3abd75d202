package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"watch-deal-finder/internal/store"
)

// HealthHandler serves the liveness and readiness probes. Liveness only
// confirms the process answers; readiness additionally pings the store so
// load balancers stop routing traffic when the database is down.
type HealthHandler struct {
	store store.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(s store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

// Healthz reports process liveness.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz reports readiness, returning 503 while the store is unreachable.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
