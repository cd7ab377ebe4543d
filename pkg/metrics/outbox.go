package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics tracks delivery of outbox rows to Pub/Sub.
type OutboxMetrics struct {
	outcomes *prometheus.CounterVec
	batch    prometheus.Histogram
}

func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_events_total",
		Help:      "Outbox rows handled by event type and outcome (published, retry, terminal).",
	}, []string{"event_type", "outcome"})
	batch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "outbox_batch_size",
		Help:      "Rows fetched per non-empty publish batch.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
	})
	reg.MustRegister(outcomes, batch)
	return &OutboxMetrics{outcomes: outcomes, batch: batch}
}

func (o *OutboxMetrics) ObserveBatch(n int) {
	if o == nil || o.batch == nil {
		return
	}
	o.batch.Observe(float64(n))
}

func (o *OutboxMetrics) IncOutcome(eventType, outcome string) {
	if o == nil || o.outcomes == nil {
		return
	}
	o.outcomes.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}
