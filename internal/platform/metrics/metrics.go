// Package metrics holds the transport-level Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the HTTP layer. Methods are nil-safe.
type Metrics struct {
	// Request latency by method, path and status class
	RequestDuration *prometheus.HistogramVec

	// Requests rejected by the authorization gate
	AuthRejections prometheus.Counter
}

// New creates a Metrics instance with all transport metrics registered.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sdfactory_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by method, path and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "path", "status"}),

		AuthRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sdfactory_http_auth_rejections_total",
			Help: "Total requests rejected by the authorization gate",
		}),
	}
}

// ObserveRequest records one handled request.
func (m *Metrics) ObserveRequest(method, path, status string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
	}
}

// IncrementAuthRejections records one rejected request.
func (m *Metrics) IncrementAuthRejections() {
	if m != nil {
		m.AuthRejections.Inc()
	}
}
