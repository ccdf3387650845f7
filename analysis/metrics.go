package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cascadesProcessedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cascadia_cascades_processed_total",
	Help: "Total number of cascades whose metrics were computed",
}, []string{"cohort"})

var graphsSkippedCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cascadia_graphs_skipped_total",
	Help: "Total number of cascades whose structural metrics were skipped due to a malformed propagation graph",
})

var analysisRunsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cascadia_analysis_runs_total",
	Help: "Total number of analysis runs",
}, []string{"status"})

var analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "cascadia_analysis_run_seconds",
	Help:    "Wall time of full analysis runs",
	Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
})
