// Package api assembles the HTTP surface: Echo server, Huma API, middleware,
// and operational endpoints.
package api

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"watch-deal-finder/internal/api/handlers"
	"watch-deal-finder/internal/api/middleware"
	"watch-deal-finder/internal/detect"
	"watch-deal-finder/internal/ingest"
	"watch-deal-finder/internal/store"
)

// Options carries the dependencies of the HTTP server.
type Options struct {
	Store          store.Store
	Detector       *detect.Detector
	MinDropPercent float64
	Logger         *slog.Logger
}

// NewServer builds the Echo instance with all routes and middleware wired.
func NewServer(opts Options) *echo.Echo {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(opts.Store)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	humaCfg := huma.DefaultConfig("watch-deal-finder", "1.0.0")
	humaCfg.Info.Description = "Price-history tracking and deal detection for watch auction listings."
	hAPI := humaecho.New(e, humaCfg)

	ingestor := ingest.NewIngestor(opts.Store, log)

	handlers.RegisterSnapshotRoutes(hAPI, handlers.NewSnapshotsHandler(ingestor))
	handlers.RegisterListingRoutes(hAPI, handlers.NewListingsHandler(opts.Store))
	handlers.RegisterDealRoutes(hAPI, handlers.NewDealsHandler(opts.Detector, opts.MinDropPercent))
	handlers.RegisterSoldRoutes(hAPI, handlers.NewSoldHandler(opts.Store))
	handlers.RegisterBrandRoutes(hAPI, handlers.NewBrandsHandler(opts.Store))

	return e
}
