package registry

import "github.com/prometheus/client_golang/prometheus"

var modulesRunning = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "komd",
	Subsystem: "registry",
	Name:      "modules_running",
	Help:      "Number of registered modules in the running state",
})

func init() {
	prometheus.MustRegister(modulesRunning)
}
