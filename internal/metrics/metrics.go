// Package metrics holds the business counters exported next to the HTTP metrics.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the domain counters.
type Metrics struct {
	tradesOpened       *prometheus.CounterVec
	tradesClosed       *prometheus.CounterVec
	investmentsCreated *prometheus.CounterVec
	accruals           prometheus.Counter
	signups            *prometheus.CounterVec
}

// New creates the counters and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		tradesOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trades_opened_total",
			Help: "Simulated trades opened, by pair.",
		}, []string{"pair"}),
		tradesClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trades_closed_total",
			Help: "Simulated trades settled, by outcome (win, loss, even).",
		}, []string{"outcome"}),
		investmentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investments_created_total",
			Help: "Investments created, by plan.",
		}, []string{"plan"}),
		accruals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "investment_accruals_total",
			Help: "Daily earnings paid to investments.",
		}),
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "user_signups_total",
			Help: "Registered accounts, by whether a valid referral code was used.",
		}, []string{"referred"}),
	}

	for _, c := range []prometheus.Collector{m.tradesOpened, m.tradesClosed, m.investmentsCreated, m.accruals, m.signups} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) TradeOpened(pair string) {
	if m == nil {
		return
	}
	m.tradesOpened.WithLabelValues(pair).Inc()
}

// TradeClosed records a settlement; sign is the sign of the profit.
func (m *Metrics) TradeClosed(sign int) {
	if m == nil {
		return
	}
	outcome := "even"
	switch {
	case sign > 0:
		outcome = "win"
	case sign < 0:
		outcome = "loss"
	}
	m.tradesClosed.WithLabelValues(outcome).Inc()
}

func (m *Metrics) InvestmentCreated(plan string) {
	if m == nil {
		return
	}
	m.investmentsCreated.WithLabelValues(plan).Inc()
}

// AccrualsPaid adds n paid days.
func (m *Metrics) AccrualsPaid(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.accruals.Add(float64(n))
}

func (m *Metrics) Signup(referred bool) {
	if m == nil {
		return
	}
	label := "false"
	if referred {
		label = "true"
	}
	m.signups.WithLabelValues(label).Inc()
}
