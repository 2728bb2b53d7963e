package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics bundles the process counters. Services take it as an optional
// dependency so tests can construct them without a registry.
type Metrics struct {
	LedgerSpends    *prometheus.CounterVec
	LedgerRecharges *prometheus.CounterVec
	PaymentEvents   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LedgerSpends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creditledger",
			Name:      "ledger_spends_total",
			Help:      "Committed spend entries by kind.",
		}, []string{"kind"}),
		LedgerRecharges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creditledger",
			Name:      "ledger_recharges_total",
			Help:      "Committed recharge entries by kind.",
		}, []string{"kind"}),
		PaymentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creditledger",
			Name:      "payment_events_total",
			Help:      "Payment confirmation outcomes by provider and status.",
		}, []string{"provider", "status"}),
	}

	reg.MustRegister(m.LedgerSpends, m.LedgerRecharges, m.PaymentEvents)
	return m
}

func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

var Module = fx.Module("observability",
	fx.Provide(
		NewRegistry,
		func(reg *prometheus.Registry) prometheus.Registerer { return reg },
		NewMetrics,
	),
)
