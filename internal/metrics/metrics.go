// Package metrics exposes counters for the alert pipeline using
// go-ethereum's metrics registry, the same library and registration style
// the teacher's metrics/geth.go exposes over Prometheus.
package metrics

import (
	gethmetrics "github.com/ethereum/go-ethereum/metrics"
)

// Counters are the named meters tracked across a pipeline run. Every field
// is a *gethmetrics.Meter registered against gethmetrics.DefaultRegistry at
// package init, matching how the go-ethereum metrics package expects
// counters to be declared: package-level vars, registered once, incremented
// from anywhere.
var (
	EventsIngested   = gethmetrics.NewRegisteredMeter("alertrelay/events/ingested", gethmetrics.DefaultRegistry)
	RulesEvaluated   = gethmetrics.NewRegisteredMeter("alertrelay/rules/evaluated", gethmetrics.DefaultRegistry)
	RulesMatched     = gethmetrics.NewRegisteredMeter("alertrelay/rules/matched", gethmetrics.DefaultRegistry)
	DispatchesSent   = gethmetrics.NewRegisteredMeter("alertrelay/dispatches/sent", gethmetrics.DefaultRegistry)
	DispatchFailures = gethmetrics.NewRegisteredMeter("alertrelay/dispatches/failed", gethmetrics.DefaultRegistry)
	RulesPanicked    = gethmetrics.NewRegisteredMeter("alertrelay/rules/panicked", gethmetrics.DefaultRegistry)
)
