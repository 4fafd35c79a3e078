package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics records ledger activity counters. Services receive it as an
// optional dependency; a nil receiver disables recording.
type Metrics struct {
	votesCast      *prometheus.CounterVec
	actionsApplied *prometheus.CounterVec
	purchases      *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	logins         prometheus.Counter
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		votesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kudos_votes_cast_total",
			Help: "Vote transitions applied, labeled by transition kind.",
		}, []string{"transition"}),
		actionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kudos_actions_applied_total",
			Help: "Reputation actions applied, labeled by action.",
		}, []string{"action"}),
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kudos_purchases_total",
			Help: "Completed shop purchases, labeled by item.",
		}, []string{"item"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kudos_operations_rejected_total",
			Help: "Ledger operations rejected before commit, labeled by reason.",
		}, []string{"reason"}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kudos_logins_recorded_total",
			Help: "Login events accepted by the streak tracker.",
		}),
	}
	reg.MustRegister(m.votesCast, m.actionsApplied, m.purchases, m.rejected, m.logins)
	return m
}

func (m *Metrics) RecordVote(transition string) {
	if m == nil {
		return
	}
	m.votesCast.WithLabelValues(transition).Inc()
}

func (m *Metrics) RecordAction(action string) {
	if m == nil {
		return
	}
	m.actionsApplied.WithLabelValues(action).Inc()
}

func (m *Metrics) RecordPurchase(itemID string) {
	if m == nil {
		return
	}
	m.purchases.WithLabelValues(itemID).Inc()
}

func (m *Metrics) RecordRejection(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordLogin() {
	if m == nil {
		return
	}
	m.logins.Inc()
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	return reg
}

var Module = fx.Module("observability.metrics",
	fx.Provide(
		NewRegistry,
		New,
	),
)
