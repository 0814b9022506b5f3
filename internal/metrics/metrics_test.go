package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.TradeOpened("BTC/USDT")
	m.TradeOpened("BTC/USDT")
	m.TradeClosed(1)
	m.TradeClosed(-1)
	m.TradeClosed(0)
	m.InvestmentCreated("VIP")
	m.AccrualsPaid(3)
	m.AccrualsPaid(0)
	m.Signup(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.tradesOpened.WithLabelValues("BTC/USDT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tradesClosed.WithLabelValues("win")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tradesClosed.WithLabelValues("loss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tradesClosed.WithLabelValues("even")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.investmentsCreated.WithLabelValues("VIP")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.accruals))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signups.WithLabelValues("true")))
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TradeOpened("ETH/USDT")
		m.TradeClosed(1)
		m.InvestmentCreated("VIP")
		m.AccrualsPaid(1)
		m.Signup(false)
	})
}
