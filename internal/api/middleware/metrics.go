// Package middleware provides Echo middleware for watch-deal-finder.
package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"watch-deal-finder/internal/metrics"
)

// unmatchedRoute is the path label used for requests that hit no registered
// route. Raw URL paths would give the metric unbounded cardinality.
const unmatchedRoute = "unmatched"

// metricsSkipPaths lists operational endpoints excluded from the request
// histogram and counter. Probes and scrapes would otherwise dominate both.
var metricsSkipPaths = map[string]struct{}{
	"/metrics": {},
	"/healthz": {},
	"/readyz":  {},
}

// healthGauges maps probe paths to the 0/1 gauge they drive.
var healthGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics returns Echo middleware recording per-route request duration and
// status. Probe paths update their up/down gauge instead of the histogram,
// and /metrics itself is not measured.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "" {
				route = unmatchedRoute
			}

			if _, skip := metricsSkipPaths[route]; skip {
				err := next(c)
				setHealthGauge(route, statusFor(c, err))
				return err
			}

			start := time.Now()
			err := next(c)
			recordRequest(c.Request().Method, route, statusFor(c, err), time.Since(start))

			return err
		}
	}
}

func recordRequest(method, route string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	metrics.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(elapsed.Seconds())
	metrics.HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
}

// statusFor resolves the response status. When the handler returned an
// error that Echo has not yet rendered, the status comes from the error
// rather than the (still zero or 200) response.
func statusFor(c echo.Context, err error) int {
	if err != nil && !c.Response().Committed {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr.Code
		}
		return http.StatusInternalServerError
	}
	return c.Response().Status
}

func setHealthGauge(route string, status int) {
	gauge, ok := healthGauges[route]
	if !ok {
		return
	}

	if status >= 200 && status < 300 {
		gauge.Set(1)
	} else {
		gauge.Set(0)
	}
}
