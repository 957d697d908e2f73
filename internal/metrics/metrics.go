// Package metrics exposes Prometheus collectors for the lab suite.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RuleEvaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wifilab_rule_evaluations_total",
		Help: "Total number of rule engine evaluation passes.",
	})

	EffectsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wifilab_effects_applied_total",
		Help: "Total number of UI effects that changed field state, labelled by kind.",
	}, []string{"kind"})

	RunsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wifilab_runs_started_total",
		Help: "Total number of test runs started.",
	})

	RunsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wifilab_runs_finished_total",
		Help: "Total number of test runs reaching a terminal state, labelled by status.",
	}, []string{"status"})

	RunEventsRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wifilab_run_events_relayed_total",
		Help: "Total number of worker events relayed to the caller, labelled by kind.",
	}, []string{"kind"})

	ScenarioSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wifilab_scenario_saves_total",
		Help: "Total number of scenario CSV save operations.",
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wifilab_run_duration_seconds",
		Help:    "Wall-clock duration of finished test runs.",
		Buckets: []float64{1, 5, 15, 60, 300, 900, 3600, 14400},
	})
)
