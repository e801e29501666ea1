package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeAccepted    = "accepted"
	OutcomeInvalid     = "invalid"
	OutcomeConfigError = "config_error"
	OutcomeSinkError   = "sink_error"
)

// KindUnknown labels submissions whose kind is not recognised.
const KindUnknown = "unknown"

// Metrics provides observability for registration submissions.
type Metrics struct {
	// Submissions by registration kind and outcome
	Submissions *prometheus.CounterVec

	// Sink append latency by driver
	AppendLatency *prometheus.HistogramVec
}

// New creates the registration metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flightclub_registrations_total",
			Help: "Total registration submissions by kind and outcome",
		}, []string{"kind", "outcome"}),

		AppendLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flightclub_sink_append_duration_seconds",
			Help:    "Duration of record sink append calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"driver"}),
	}
}

// IncrementSubmission records a submission outcome.
func (m *Metrics) IncrementSubmission(kind, outcome string) {
	if m != nil {
		m.Submissions.WithLabelValues(kind, outcome).Inc()
	}
}

// ObserveAppendLatency records the duration of a sink append.
func (m *Metrics) ObserveAppendLatency(driver string, d time.Duration) {
	if m != nil {
		m.AppendLatency.WithLabelValues(driver).Observe(d.Seconds())
	}
}
