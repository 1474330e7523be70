package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TenderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderflow_tender_transitions_total",
			Help: "Tender lifecycle transitions applied",
		},
		[]string{"from", "to"},
	)

	BidTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderflow_bid_transitions_total",
			Help: "Bid lifecycle transitions applied",
		},
		[]string{"from", "to"},
	)

	StateConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderflow_state_conflicts_total",
			Help: "Conditional writes lost to a concurrent transition",
		},
		[]string{"operation"},
	)

	SweepRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenderflow_sweep_runs_total",
			Help: "Expiry sweep executions",
		},
	)

	SweepExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenderflow_sweep_expired_total",
			Help: "Tenders expired by the sweep",
		},
	)

	EvaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tenderflow_evaluation_duration_seconds",
			Help:    "Bid analysis duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
	)

	NarrativeFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenderflow_narrative_fallbacks_total",
			Help: "Analyses served with the deterministic fallback narrative",
		},
	)
)

func Register() {
	prometheus.MustRegister(
		TenderTransitions,
		BidTransitions,
		StateConflicts,
		SweepRuns,
		SweepExpired,
		EvaluationDuration,
		NarrativeFallbacks,
	)
}
