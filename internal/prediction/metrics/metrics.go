// Package metrics exposes Prometheus instrumentation for the prediction
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Predictions         *prometheus.CounterVec
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	ExplanationFailures prometheus.Counter
	ScoringLatency      prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Predictions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "olea_predictions_total",
			Help: "Prediction attempts by outcome.",
		}, []string{"outcome"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olea_prediction_cache_hits_total",
			Help: "Scoring results served from the cache.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olea_prediction_cache_misses_total",
			Help: "Scoring calls that went to the model.",
		}),
		ExplanationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olea_explanation_failures_total",
			Help: "Explanation calls that failed after a successful score.",
		}),
		ScoringLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "olea_scoring_duration_seconds",
			Help:    "Latency of scoring model calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementPredictions(outcome string) {
	if m != nil {
		m.Predictions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) ExplanationFailed() {
	if m != nil {
		m.ExplanationFailures.Inc()
	}
}

func (m *Metrics) ObserveScoring(seconds float64) {
	if m != nil {
		m.ScoringLatency.Observe(seconds)
	}
}
