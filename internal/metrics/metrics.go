// Package metrics exposes payment lifecycle counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Payments struct {
	registry *prometheus.Registry

	Initiated      *prometheus.CounterVec // gateway, outcome
	Verified       *prometheus.CounterVec // gateway, status
	RecordFailures *prometheus.CounterVec // gateway, path
}

// New builds the counters on a private registry so tests can create as many as they like.
func New() *Payments {
	reg := prometheus.NewRegistry()
	m := &Payments{
		registry: reg,
		Initiated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_initiated_total",
			Help: "Payment initiations by gateway and outcome.",
		}, []string{"gateway", "outcome"}),
		Verified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_verified_total",
			Help: "Verified payments by gateway and recorded transaction status.",
		}, []string{"gateway", "status"}),
		RecordFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transactions_record_failures_total",
			Help: "Transaction writes that failed, by gateway and verify path.",
		}, []string{"gateway", "path"}),
	}
	reg.MustRegister(
		m.Initiated,
		m.Verified,
		m.RecordFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Payments) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
