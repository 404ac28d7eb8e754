package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Generation metrics
	generationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindio_generation_requests_total",
			Help: "Total number of model generation requests",
		},
		[]string{"purpose", "outcome"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindio_generation_duration_seconds",
			Help:    "Model generation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"purpose"},
	)

	// Tool metrics
	toolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindio_tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool", "status"},
	)

	// Dialogue metrics
	stageTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindio_stage_transitions_total",
			Help: "Total number of dialogue stage transitions",
		},
		[]string{"from", "to"},
	)

	turnsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mindio_turns_total",
			Help: "Total number of user turns handled",
		},
	)

	// Knowledge metrics
	knowledgeSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindio_knowledge_searches_total",
			Help: "Total number of knowledge searches",
		},
		[]string{"mode"},
	)

	initOnce sync.Once
)

// InitMetrics initializes Prometheus metrics
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			generationRequestsTotal,
			generationDuration,
			toolExecutionsTotal,
			stageTransitionsTotal,
			turnsTotal,
			knowledgeSearchesTotal,
		)
	})
}

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordGeneration records a model generation request
func RecordGeneration(purpose, outcome string, duration time.Duration) {
	generationRequestsTotal.WithLabelValues(purpose, outcome).Inc()
	generationDuration.WithLabelValues(purpose).Observe(duration.Seconds())
}

// RecordToolExecution records a tool execution
func RecordToolExecution(tool, status string) {
	toolExecutionsTotal.WithLabelValues(tool, status).Inc()
}

// RecordStageTransition records a dialogue stage transition
func RecordStageTransition(from, to string) {
	stageTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordTurn records one handled user turn
func RecordTurn() {
	turnsTotal.Inc()
}

// RecordKnowledgeSearch records a knowledge search by mode
// ("embedding" or "keyword")
func RecordKnowledgeSearch(mode string) {
	knowledgeSearchesTotal.WithLabelValues(mode).Inc()
}
