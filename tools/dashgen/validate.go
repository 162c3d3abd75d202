package main

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	promsdk "github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/prometheus/prometheus/promql/parser"

	"watch-deal-finder/tools/dashgen/rules"
)

// CheckExpr parses a PromQL expression and verifies every metric it
// references is in the known set.
func CheckExpr(expr string, known map[string]bool) error {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return fmt.Errorf("parsing %q: %w", expr, err)
	}

	var unknown []string
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		if vs, ok := n.(*parser.VectorSelector); ok && vs.Name != "" && !known[vs.Name] {
			unknown = append(unknown, vs.Name)
		}
		return nil
	})

	if len(unknown) > 0 {
		return fmt.Errorf("expression %q references unknown metrics %v", expr, unknown)
	}
	return nil
}

// DashboardExprs extracts every Prometheus query expression from a built
// dashboard, walking rows and their nested panels.
func DashboardExprs(dash dashboard.Dashboard) []string {
	var exprs []string
	for _, p := range dash.Panels {
		if p.Panel != nil {
			exprs = append(exprs, panelExprs(*p.Panel)...)
		}
		if p.RowPanel != nil {
			for _, inner := range p.RowPanel.Panels {
				exprs = append(exprs, panelExprs(inner)...)
			}
		}
	}
	return exprs
}

func panelExprs(p dashboard.Panel) []string {
	var exprs []string
	for _, target := range p.Targets {
		switch q := target.(type) {
		case promsdk.Dataquery:
			exprs = append(exprs, q.Expr)
		case *promsdk.Dataquery:
			exprs = append(exprs, q.Expr)
		}
	}
	return exprs
}

// CheckRules validates every expression in a PrometheusRule CR.
func CheckRules(cr rules.PrometheusRule, known map[string]bool) error {
	for _, group := range cr.Spec.Groups {
		for _, rule := range group.Rules {
			if err := CheckExpr(rule.Expr, known); err != nil {
				return fmt.Errorf("group %s: %w", group.Name, err)
			}
		}
	}
	return nil
}
