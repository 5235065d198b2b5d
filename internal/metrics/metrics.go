// Package metrics exposes Prometheus counters for coupon operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts coupon registry operations and cart applications.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registryOps  *prometheus.CounterVec
	applications *prometheus.CounterVec
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		registryOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coupon",
			Name:      "registry_operations_total",
			Help:      "Coupon registry operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coupon",
			Name:      "applications_total",
			Help:      "Coupon application transactions by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.registryOps, r.applications)
	return r
}

// RegistryOp counts one registry operation.
func (r *Recorder) RegistryOp(operation, outcome string) {
	if r == nil {
		return
	}
	r.registryOps.WithLabelValues(operation, outcome).Inc()
}

// Application counts one apply-coupon transaction.
func (r *Recorder) Application(outcome string) {
	if r == nil {
		return
	}
	r.applications.WithLabelValues(outcome).Inc()
}
