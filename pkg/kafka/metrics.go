package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds producer collectors.
type Metrics struct {
	published *prometheus.CounterVec
	errors    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the producer collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_messages_published_total",
			Help: "Total number of Kafka messages published",
		}, []string{"topic"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_publish_errors_total",
			Help: "Total number of Kafka publish errors",
		}, []string{"topic"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Duration of Kafka publish operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
	}
	reg.MustRegister(m.published, m.errors, m.duration)
	return m
}

func (m *Metrics) observe(topic string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(topic).Observe(d.Seconds())
	if err != nil {
		m.errors.WithLabelValues(topic).Inc()
		return
	}
	m.published.WithLabelValues(topic).Inc()
}
