package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"watch-deal-finder/tools/dashgen/dashboards"
	"watch-deal-finder/tools/dashgen/rules"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_EmptyOutputDir(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "", DashboardEnabled: true}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_NothingEnabled(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "/tmp", DashboardEnabled: false, RulesEnabled: false}
	assert.Error(t, cfg.Validate())
}

func TestBuildOverviewDashboard(t *testing.T) {
	t.Parallel()

	builder := dashboards.BuildOverview()
	dash, err := builder.Build()
	require.NoError(t, err)

	// Verify dashboard metadata.
	require.NotNil(t, dash.Uid)
	assert.Equal(t, "wdf-overview", *dash.Uid)

	require.NotNil(t, dash.Title)
	assert.Equal(t, "WDF Overview", *dash.Title)

	// Verify template variable.
	require.NotNil(t, dash.Templating)
	assert.Len(t, dash.Templating.List, 1)
	assert.Equal(t, "datasource", dash.Templating.List[0].Name)

	// Verify we have 6 rows.
	assert.Len(t, dash.Panels, 6)

	// Count total inner panels.
	totalPanels := 0
	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			totalPanels += len(p.RowPanel.Panels)
		}
	}
	assert.Equal(t, 18, totalPanels)

	// Every PromQL expression parses and references only known metrics.
	exprs := DashboardExprs(dash)
	require.NotEmpty(t, exprs)
	for _, expr := range exprs {
		assert.NoError(t, CheckExpr(expr, KnownMetrics))
	}
}

func TestCheckExpr_UnknownMetric(t *testing.T) {
	t.Parallel()

	assert.Error(t, CheckExpr(`rate(wdf_no_such_metric_total[5m])`, KnownMetrics))
	assert.Error(t, CheckExpr(`this is not promql`, KnownMetrics))
	assert.NoError(t, CheckExpr(`rate(wdf_feed_calls_total[5m])`, KnownMetrics))
}

func TestRecordingRules(t *testing.T) {
	t.Parallel()

	cr := rules.RecordingRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "wdf-recording-rules", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "wdf-recording", group.Name)
	require.Len(t, group.Rules, 8)

	expectedRecords := []string{
		"wdf:http_requests:rate5m",
		"wdf:http_errors:rate5m",
		"wdf:snapshots_ingested:rate5m",
		"wdf:price_changes:rate5m",
		"wdf:validation_failures:rate5m",
		"wdf:ingestion_errors:rate5m",
		"wdf:feed_calls:rate5m",
		"wdf:deals_detected:rate5m",
	}
	for i, rule := range group.Rules {
		assert.Equal(t, expectedRecords[i], rule.Record)
		assert.NoError(t, CheckExpr(rule.Expr, KnownMetrics))
	}

	// Verify YAML marshaling works.
	data, err := yaml.Marshal(cr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiVersion: monitoring.coreos.com/v1")
}

func TestAlertRules(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "wdf-alerts", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "wdf-alerts", group.Name)
	require.Len(t, group.Rules, 9)

	expectedAlerts := []string{
		"WdfDown",
		"WdfReadinessDown",
		"WdfHighErrorRate",
		"WdfIngestionErrors",
		"WdfValidationFailures",
		"WdfFeedQuotaHigh",
		"WdfFeedLimitReached",
		"WdfInvariantViolations",
		"WdfNotificationFailures",
	}
	for i, rule := range group.Rules {
		assert.Equal(t, expectedAlerts[i], rule.Alert)
		assert.NoError(t, CheckExpr(rule.Expr, KnownMetrics))
		assert.NotEmpty(t, rule.Labels["severity"], "alert %s missing severity", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], "alert %s missing summary", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], "alert %s missing description", rule.Alert)
	}
}

func TestGenerateArtifacts(t *testing.T) {
	t.Parallel()

	cfg := Config{OutputDir: t.TempDir(), DashboardEnabled: true, RulesEnabled: true}
	require.NoError(t, run(cfg, false))
}
