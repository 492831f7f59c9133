package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CandidatesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "observatory_candidates_ingested_total",
		Help: "The total number of raw candidates produced by source connectors",
	}, []string{"source"})

	CandidatesSearched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "observatory_candidates_searched_total",
		Help: "The total number of raw candidates produced by the web search provider",
	})

	SearchQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "observatory_search_queries_total",
		Help: "The total number of planned queries executed, by outcome",
	}, []string{"status"})

	CandidatesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "observatory_candidates_dropped_total",
		Help: "Total number of candidates dropped by the normalizer, by reason",
	}, []string{"reason"})

	EvidenceInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "observatory_evidence_inserted_total",
		Help: "The total number of evidence records persisted",
	})

	SignalsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "observatory_signals_created_total",
		Help: "The total number of signals extracted from evidence records",
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "observatory_runs_total",
		Help: "The total number of generation runs, by final status",
	}, []string{"status"})

	ReportsCoverageLow = promauto.NewCounter(prometheus.CounterOpts{
		Name: "observatory_reports_coverage_low_total",
		Help: "The total number of reports rendered with the coverage-low notice",
	})

	PhaseDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "observatory_phase_duration_seconds",
		Help:    "Duration in seconds of each run phase",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"phase"})

	URLValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "observatory_url_validations_total",
		Help: "Total number of URL validation verdicts, by status",
	}, []string{"status"})
)
