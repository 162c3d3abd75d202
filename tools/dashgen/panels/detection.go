package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// DealsRate returns a timeseries panel showing deal candidates produced
// per hour.
func DealsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Deals / hour").
		Description("Deal candidates produced by detection cycles per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`wdf:deals_detected:rate5m * 3600`, "deals/hour", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// DetectionDuration returns a timeseries panel showing p50 and p95 detection
// cycle durations.
func DetectionDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Detection Duration").
		Description("Deal detection cycle duration percentiles").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(
			`histogram_quantile(0.50, sum(rate(wdf_detection_duration_seconds_bucket{job="watch-deal-finder"}[5m])) by (le))`,
			"p50",
			"A",
		)).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(wdf_detection_duration_seconds_bucket{job="watch-deal-finder"}[5m])) by (le))`,
			"p95",
			"B",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// InvariantViolations returns a stat panel showing active listings found
// without price history in the past 24 hours.
func InvariantViolations() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Invariant Violations (24h)").
		Description("Active listings found without price history in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`increase(wdf_invariant_violations_total{job="watch-deal-finder"}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 10)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
