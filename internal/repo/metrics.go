package repo

import "github.com/prometheus/client_golang/prometheus"

var lifecycleOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "menus_api",
		Name:      "lifecycle_operations_total",
		Help:      "Committed repository operations by entity and kind",
	},
	[]string{"entity", "op"},
)

func init() { prometheus.MustRegister(lifecycleOps) }
