package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance holds the real (USD) balance and the virtual balance used by the trading simulator.
type Balance struct {
	UserID      string          `json:"user_id"`
	Balance     decimal.Decimal `json:"balance"`
	DemoBalance decimal.Decimal `json:"demo_balance"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
