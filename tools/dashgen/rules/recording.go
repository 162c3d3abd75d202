package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "wdf-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "wdf-recording",
					Rules: []Rule{
						{
							Record: "wdf:http_requests:rate5m",
							Expr:   `sum(rate(wdf_http_requests_total[5m]))`,
						},
						{
							Record: "wdf:http_errors:rate5m",
							Expr:   `sum(rate(wdf_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "wdf:snapshots_ingested:rate5m",
							Expr:   `rate(wdf_snapshots_ingested_total[5m])`,
						},
						{
							Record: "wdf:price_changes:rate5m",
							Expr:   `rate(wdf_price_changes_total[5m])`,
						},
						{
							Record: "wdf:validation_failures:rate5m",
							Expr:   `rate(wdf_validation_failures_total[5m])`,
						},
						{
							Record: "wdf:ingestion_errors:rate5m",
							Expr:   `rate(wdf_ingestion_errors_total[5m])`,
						},
						{
							Record: "wdf:feed_calls:rate5m",
							Expr:   `rate(wdf_feed_calls_total[5m])`,
						},
						{
							Record: "wdf:deals_detected:rate5m",
							Expr:   `rate(wdf_deals_detected_total[5m])`,
						},
					},
				},
			},
		},
	}
}
