package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the domain collectors of the order wizard and lead capture.
type Metrics struct {
	transitions *prometheus.CounterVec
	submissions *prometheus.CounterVec
	submitTime  *prometheus.HistogramVec
	leads       prometheus.Counter
}

// NewMetrics creates the domain collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consulting19_wizard_transitions_total",
			Help: "Wizard operations by variant, operation and outcome",
		}, []string{"variant", "operation", "outcome"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consulting19_order_submissions_total",
			Help: "Order submissions by variant, backend and outcome",
		}, []string{"variant", "backend", "outcome"}),
		submitTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "consulting19_order_submission_duration_seconds",
			Help:    "Time spent in the submission backend",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
		leads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "consulting19_leads_created_total",
			Help: "Contact form submissions stored",
		}),
	}
	reg.MustRegister(m.transitions, m.submissions, m.submitTime, m.leads)
	return m
}

func (m *Metrics) transition(variant, operation, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(variant, operation, outcome).Inc()
}

func (m *Metrics) submission(variant, backend, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(variant, backend, outcome).Inc()
	m.submitTime.WithLabelValues(backend).Observe(d.Seconds())
}

func (m *Metrics) leadCreated() {
	if m != nil {
		m.leads.Inc()
	}
}
