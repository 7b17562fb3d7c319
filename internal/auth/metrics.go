package auth

import "github.com/prometheus/client_golang/prometheus"

var (
	connectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "komd",
		Subsystem: "gateway",
		Name:      "connections_total",
		Help:      "Accepted gateway connections",
	})

	acceptErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "komd",
		Subsystem: "gateway",
		Name:      "accept_errors_total",
		Help:      "Transient errors returned by accept",
	})

	authTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "komd",
			Subsystem: "gateway",
			Name:      "auth_total",
			Help:      "Authentication exchanges by result (ok, fail, error)",
		},
		[]string{"result"},
	)

	activeWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "komd",
		Subsystem: "gateway",
		Name:      "active_workers",
		Help:      "Connections currently being served",
	})
)

func init() {
	prometheus.MustRegister(connectionsTotal, acceptErrorsTotal, authTotal, activeWorkers)
}
