package main

import "errors"

// KnownMetrics is the set of metric names exported by watch-deal-finder
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"wdf_http_request_duration_seconds": true,
	"wdf_http_requests_total":           true,

	// Health metrics.
	"wdf_healthz_up": true,
	"wdf_readyz_up":  true,

	// Ingestion metrics.
	"wdf_snapshots_ingested_total":  true,
	"wdf_price_changes_total":       true,
	"wdf_validation_failures_total": true,
	"wdf_ingestion_errors_total":    true,
	"wdf_scan_duration_seconds":     true,

	// Detection metrics.
	"wdf_detection_duration_seconds": true,
	"wdf_deals_detected_total":       true,
	"wdf_invariant_violations_total": true,

	// Feed API metrics.
	"wdf_feed_calls_total":            true,
	"wdf_feed_daily_usage":            true,
	"wdf_feed_daily_limit_hits_total": true,

	// Notification metrics.
	"wdf_deals_notified_total":        true,
	"wdf_notification_failures_total": true,

	// Recording rules.
	"wdf:http_requests:rate5m":       true,
	"wdf:http_errors:rate5m":         true,
	"wdf:snapshots_ingested:rate5m":  true,
	"wdf:price_changes:rate5m":       true,
	"wdf:validation_failures:rate5m": true,
	"wdf:ingestion_errors:rate5m":    true,
	"wdf:feed_calls:rate5m":          true,
	"wdf:deals_detected:rate5m":      true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
