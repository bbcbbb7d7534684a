package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kosarica/insight-service/internal/insights"
)

var (
	// stageDuration tracks time spent per pipeline stage.
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_stage_duration_seconds",
		Help:    "Time taken per analysis stage",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"stage"}) // stage: proximity, trend, inventory, forecast, weather, insights, report

	// stageErrors tracks failed or degraded stages.
	stageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_stage_errors_total",
		Help: "Total number of analysis stage failures by stage",
	}, []string{"stage"})

	// insightsGenerated tracks generated insights by priority.
	insightsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_insights_generated_total",
		Help: "Total number of insights generated by priority",
	}, []string{"priority"})
)

// MetricsRecorder records engine metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordStage records the duration of one stage.
func (m *MetricsRecorder) RecordStage(stage string, duration time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordStageError records a failed or degraded stage.
func (m *MetricsRecorder) RecordStageError(stage string) {
	stageErrors.WithLabelValues(stage).Inc()
}

// RecordInsights records one pass worth of insights.
func (m *MetricsRecorder) RecordInsights(list []insights.Insight) {
	for _, in := range list {
		insightsGenerated.WithLabelValues(in.Priority.String()).Inc()
	}
}
