package services

import "github.com/prometheus/client_golang/prometheus"

// likeToggles counts ledger transitions (created, unliked, reactivated,
// converged). The label set is fixed so cardinality stays bounded.
var likeToggles = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gallery_like_toggles_total",
		Help: "Total like toggles by ledger transition.",
	},
	[]string{"transition"},
)

func init() {
	prometheus.MustRegister(likeToggles)
}
