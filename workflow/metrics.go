package workflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeRejected  = "rejected"
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeIgnored   = "ignored"
	outcomeReplaced  = "replaced"
)

// Metrics counts submissions by outcome and times round trips.
// A nil *Metrics records nothing.
type Metrics struct {
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics registers the workflow collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_submissions_total",
			Help: "Pipeline submit actions, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_submission_duration_seconds",
			Help:    "Time from validation to the analysis service's answer.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.submissions, m.duration)
	return m
}

func (m *Metrics) count(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observe(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}
