package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StageExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_stage_executions_total",
			Help: "Total number of analysis stage executions",
		},
		[]string{"stage", "tier"},
	)

	StageFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_stage_fallbacks_total",
			Help: "Total number of stages that degraded to their default value",
		},
		[]string{"stage", "reason"},
	)

	StageSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_stage_skipped_total",
			Help: "Total number of stages skipped by the routing gate",
		},
		[]string{"stage", "routed_tier"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "analysis_duration_seconds",
			Help: "End-to-end analysis duration in seconds",
		},
		[]string{"kind"},
	)

	EstimatedCost = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_estimated_cost_usd_total",
			Help: "Cumulative estimated inference cost in USD",
		},
	)
)
