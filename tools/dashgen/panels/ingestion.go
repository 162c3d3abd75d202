package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// SnapshotsRate returns a timeseries panel showing snapshots accepted and
// price-history observations appended per minute.
func SnapshotsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Snapshots / min").
		Description("Snapshots ingested and price changes recorded per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`wdf:snapshots_ingested:rate5m * 60`, "snapshots/min", "A")).
		WithTarget(PromQuery(`wdf:price_changes:rate5m * 60`, "price changes/min", "B")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// IngestionErrors returns a timeseries panel showing persistence errors and
// validation rejections per minute.
func IngestionErrors() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Errors / min").
		Description("Ingestion persistence errors and validation rejections per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`wdf:ingestion_errors:rate5m * 60`, "errors/min", "A")).
		WithTarget(PromQuery(`wdf:validation_failures:rate5m * 60`, "rejections/min", "B")).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenYellowRed(0.1, 1)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ScanDuration returns a timeseries panel showing the p95 brand scan cycle
// duration.
func ScanDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Scan Duration (p95)").
		Description("95th percentile brand scan cycle duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(wdf_scan_duration_seconds_bucket{job="watch-deal-finder"}[5m])) by (le))`,
			"p95",
			"A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
