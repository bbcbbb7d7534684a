package proximity

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// analysisDuration tracks the time taken per proximity analysis.
	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proximity_analysis_duration_seconds",
		Help:    "Time taken for proximity analysis by mode",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"mode"}) // mode: single, all

	// competitorsFound tracks the number of competitors within the radius.
	competitorsFound = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "proximity_competitors_in_radius_count",
		Help:    "Number of active competitors within the analysis radius",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	// closestCompetitorDistance tracks the distance to the nearest competitor.
	closestCompetitorDistance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "proximity_closest_competitor_km",
		Help:    "Distance to the closest competitor in kilometers",
		Buckets: []float64{0.25, 0.5, 1, 2, 3, 5, 10},
	})

	// cacheHits and cacheMisses track the proximity result cache.
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proximity_cache_hits_total",
		Help: "Total number of proximity cache hits",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proximity_cache_misses_total",
		Help: "Total number of proximity cache misses",
	})
)

// MetricsRecorder records proximity metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordAnalysis records one analysis and its outcome.
func (m *MetricsRecorder) RecordAnalysis(mode string, duration time.Duration) {
	analysisDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordResult records competitor counts for a result.
func (m *MetricsRecorder) RecordResult(r Result) {
	competitorsFound.Observe(float64(r.Count()))
	if r.ClosestCompetitor != nil {
		closestCompetitorDistance.Observe(r.ClosestCompetitor.DistanceKm)
	}
}

// RecordCacheHit records a cache hit.
func (m *MetricsRecorder) RecordCacheHit() {
	cacheHits.Inc()
}

// RecordCacheMiss records a cache miss.
func (m *MetricsRecorder) RecordCacheMiss() {
	cacheMisses.Inc()
}
