package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type stubFeed map[string]string

func (f stubFeed) Price(symbol string) (decimal.Decimal, bool) {
	p, ok := f[symbol]
	if !ok {
		return decimal.Zero, false
	}
	return decimal.RequireFromString(p), true
}

func (f stubFeed) BaseOf(pair string) (string, bool) {
	switch pair {
	case "BTC/USDT":
		return "BTC", true
	case "ETH/USDT":
		return "ETH", true
	}
	return "", false
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decEq matches a decimal argument by value.
func decEq(s string) interface{} {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func TestToUSD(t *testing.T) {
	feed := stubFeed{"BTC": "45000", "ETH": "3200"}

	tests := []struct {
		amount   string
		currency string
		want     string
		wantErr  error
	}{
		{amount: "150", currency: "USDT", want: "150"},
		{amount: "150", currency: "USD", want: "150"},
		{amount: "0.05", currency: "BTC", want: "2250"},
		{amount: "0.333", currency: "ETH", want: "1065.6"},
		{amount: "1", currency: "BNB", wantErr: ErrPriceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.currency+" "+tt.amount, func(t *testing.T) {
			got, err := toUSD(feed, dec(tt.amount), tt.currency)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestPageQuery(t *testing.T) {
	assert.Equal(t, 10, pageQuery(0, -5).Limit)
	assert.Equal(t, 0, pageQuery(0, -5).Offset)
	assert.Equal(t, 100, pageQuery(1000, 20).Limit)
	assert.Equal(t, 20, pageQuery(1000, 20).Offset)
}
