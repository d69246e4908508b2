package view

import "github.com/prometheus/client_golang/prometheus"

var (
	refetchTotal *prometheus.CounterVec
	staleTotal   *prometheus.CounterVec
	failureTotal *prometheus.CounterVec
	publishTotal prometheus.Counter
)

func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Counter) {
	ref := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_refetch_total",
			Help: "Number of fetches started by the view controller",
		},
		[]string{"kind"},
	)
	stale := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_stale_responses_total",
			Help: "Number of fetch completions discarded because a newer request superseded them",
		},
		[]string{"kind"},
	)
	fail := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_fetch_failures_total",
			Help: "Number of failed fetches by kind and error class",
		},
		[]string{"kind", "error"},
	)
	pub := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "view_publish_total",
			Help: "Number of view snapshots published",
		},
	)
	return ref, stale, fail, pub
}

func init() {
	refetchTotal, staleTotal, failureTotal, publishTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers view metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(refetchTotal, staleTotal, failureTotal, publishTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	refetchTotal, staleTotal, failureTotal, publishTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
