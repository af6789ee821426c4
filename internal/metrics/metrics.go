// Package metrics exposes the portal's Prometheus instrumentation. Each
// Metrics value owns its registry so independent instances never collide.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

var Module = fx.Provide(New)

type Metrics struct {
	Registry *prometheus.Registry

	BillsComputed prometheus.Counter
	RecordUpserts *prometheus.CounterVec
	Payments      prometheus.Counter
	TicketsOpened prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		BillsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voltra",
			Name:      "bills_computed_total",
			Help:      "Bill computations performed, including previews.",
		}),
		RecordUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voltra",
			Name:      "record_upserts_total",
			Help:      "Consumption record writes by action.",
		}, []string{"action"}),
		Payments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voltra",
			Name:      "payments_total",
			Help:      "Bills marked as paid.",
		}),
		TicketsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voltra",
			Name:      "tickets_opened_total",
			Help:      "Grievance tickets opened.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.BillsComputed,
		m.RecordUpserts,
		m.Payments,
		m.TicketsOpened,
	)
	return m
}
