package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	analysisStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analysis_started_total",
		Help: "Number of resume analysis requests that passed validation.",
	})
	analysisCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analysis_completed_total",
		Help: "Number of resume analyses returned to the caller.",
	})
	analysisFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_failed_total",
		Help: "Number of failed resume analyses by failure kind.",
	}, []string{"kind"})
	analysisPersistFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analysis_persist_failed_total",
		Help: "Number of analyses that completed but could not be stored.",
	})
	analysisDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "analysis_duration_ms",
		Help:    "End-to-end analysis duration in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	})
)

func init() {
	prometheus.MustRegister(
		analysisStartedTotal,
		analysisCompletedTotal,
		analysisFailedTotal,
		analysisPersistFailedTotal,
		analysisDurationMs,
	)
}

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStartedTotal.Inc()
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Inc()
}

// IncAnalysisFailed increments the failed counter for a failure kind.
func IncAnalysisFailed(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	analysisFailedTotal.WithLabelValues(kind).Inc()
}

// IncAnalysisPersistFailed increments the best-effort persistence failure counter.
func IncAnalysisPersistFailed() {
	analysisPersistFailedTotal.Inc()
}

// ObserveAnalysisDurationMs records an analysis duration sample.
func ObserveAnalysisDurationMs(ms float64) {
	analysisDurationMs.Observe(ms)
}

// Handler exposes the Prometheus scrape endpoint as a gin handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
