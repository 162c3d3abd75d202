package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// watch-deal-finder operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "wdf-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "wdf-alerts",
					Rules: []Rule{
						{
							Alert: "WdfDown",
							Expr:  `absent(up{job="watch-deal-finder"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Watch Deal Finder is down",
								"description": "The watch-deal-finder job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "WdfReadinessDown",
							Expr:  `wdf_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Watch Deal Finder readiness check is failing",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes.",
							},
						},
						{
							Alert: "WdfHighErrorRate",
							Expr:  `wdf:http_errors:rate5m / wdf:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on Watch Deal Finder",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "WdfIngestionErrors",
							Expr:  `wdf:ingestion_errors:rate5m > 0`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Ingestion errors detected",
								"description": "Snapshot ingestion has been producing persistence errors for more than 5 minutes.",
							},
						},
						{
							Alert: "WdfValidationFailures",
							Expr:  `wdf:validation_failures:rate5m > 0.1`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Snapshot validation rejection rate is elevated",
								"description": "Snapshots are failing validation at more than 0.1/s for the last 5 minutes; the feed format may have changed.",
							},
						},
						{
							Alert: "WdfFeedQuotaHigh",
							Expr:  `wdf_feed_daily_usage > 4000`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Feed API daily usage is above 80% of the quota",
								"description": "Daily feed API usage has exceeded 4000 calls (limit is 5000).",
							},
						},
						{
							Alert: "WdfFeedLimitReached",
							Expr:  `increase(wdf_feed_daily_limit_hits_total[5m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Feed API daily limit has been reached",
								"description": "The marketplace feed daily quota has been exhausted. Scanning is paused until reset.",
							},
						},
						{
							Alert: "WdfInvariantViolations",
							Expr:  `increase(wdf_invariant_violations_total[1h]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Active listings found without price history",
								"description": "Detection cycles are finding active listings that have no price observations. Ingestion and history writes may be out of sync.",
							},
						},
						{
							Alert: "WdfNotificationFailures",
							Expr:  `increase(wdf_notification_failures_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more deal notifications (Discord or Telegram) have failed to send.",
							},
						},
					},
				},
			},
		},
	}
}
