// Package metrics provides observability for the issuance pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus metrics. All methods are nil-safe
// so callers can run without observability wired.
type Metrics struct {
	// Pipeline outcomes by document kind and failing stage ("ok" on success)
	Outcomes *prometheus.CounterVec

	// End-to-end processing latency by document kind
	ProcessLatency *prometheus.HistogramVec

	// Credentials signed locally
	CredentialsSigned prometheus.Counter
}

// New creates a Metrics instance with all pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sdfactory_pipeline_outcomes_total",
			Help: "Total pipeline runs by document kind and outcome",
		}, []string{"kind", "outcome"}),

		ProcessLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sdfactory_pipeline_duration_seconds",
			Help:    "End-to-end duration of document processing by kind",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),

		CredentialsSigned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sdfactory_credentials_signed_total",
			Help: "Total credentials signed with the local key",
		}),
	}
}

// IncrementOutcome records one pipeline run's outcome.
func (m *Metrics) IncrementOutcome(kind, outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(kind, outcome).Inc()
	}
}

// ObserveProcessLatency records the end-to-end processing duration.
func (m *Metrics) ObserveProcessLatency(kind string, d time.Duration) {
	if m != nil {
		m.ProcessLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// IncrementCredentialsSigned records locally signed credentials.
func (m *Metrics) IncrementCredentialsSigned(n int) {
	if m != nil {
		m.CredentialsSigned.Add(float64(n))
	}
}
