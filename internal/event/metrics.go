package event

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "komd",
			Subsystem: "events",
			Name:      "dispatched_total",
			Help:      "Events handed to a dispatcher",
		},
		[]string{"kind"},
	)

	deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "komd",
			Subsystem: "events",
			Name:      "deliveries_total",
			Help:      "Successful per-target event deliveries",
		},
		[]string{"kind"},
	)

	deliveryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "komd",
			Subsystem: "events",
			Name:      "delivery_failures_total",
			Help:      "Per-target deliveries that returned an error or panicked",
		},
		[]string{"kind"},
	)

	targetsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "komd",
			Subsystem: "events",
			Name:      "targets",
			Help:      "Registered event targets",
		},
		[]string{"dispatcher"},
	)
)

func init() {
	prometheus.MustRegister(eventsDispatched, deliveries, deliveryFailures, targetsGauge)
}
