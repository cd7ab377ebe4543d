package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks order creation and lifecycle transitions.
type OrderMetrics struct {
	created       *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	numberRetries prometheus.Counter
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders created by payment method.",
	}, []string{"payment_method"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_transitions_total",
		Help:      "Order status changes by target status.",
	}, []string{"status"})
	numberRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_number_retries_total",
		Help:      "Order inserts retried after an order number collision.",
	})
	reg.MustRegister(created, transitions, numberRetries)
	return &OrderMetrics{created: created, transitions: transitions, numberRetries: numberRetries}
}

func (o *OrderMetrics) IncCreated(paymentMethod string) {
	if o == nil || o.created == nil {
		return
	}
	o.created.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

func (o *OrderMetrics) IncTransition(status string) {
	if o == nil || o.transitions == nil {
		return
	}
	o.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func (o *OrderMetrics) IncNumberRetry() {
	if o == nil || o.numberRetries == nil {
		return
	}
	o.numberRetries.Inc()
}
