package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process level Prometheus metrics. Domain specific
// metrics live with their domain (see internal/prediction/metrics).
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
	Extractions    *prometheus.CounterVec
	UsersCreated   prometheus.Counter
}

// New creates and registers all process level Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "olea_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		Extractions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "olea_extractions_total",
			Help: "Document extraction attempts by outcome.",
		}, []string{"outcome"}),
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olea_users_created_total",
			Help: "Total number of users created in the system.",
		}),
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	m.RequestLatency.WithLabelValues(route, status).Observe(seconds)
}

// IncrementExtractions increments the extraction counter for an outcome.
func (m *Metrics) IncrementExtractions(outcome string) {
	m.Extractions.WithLabelValues(outcome).Inc()
}

// IncrementUsersCreated increments the users created counter by 1.
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}
