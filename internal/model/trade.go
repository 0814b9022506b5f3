package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide is the direction of a simulated position.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// Valid reports whether s is buy or sell.
func (s TradeSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

// TradeStatus is open until the position is settled.
type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeClosed TradeStatus = "closed"
)

// Trade is a simulated position funded from the demo balance.
type Trade struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Pair           string           `json:"pair"`
	Side           TradeSide        `json:"side"`
	Amount         decimal.Decimal  `json:"amount"`
	EntryPrice     decimal.Decimal  `json:"entry_price"`
	ExitPrice      *decimal.Decimal `json:"exit_price,omitempty"`
	Profit         decimal.Decimal  `json:"profit"`
	Status         TradeStatus      `json:"status"`
	ClosedManually bool             `json:"closed_manually"`
	OpenedAt       time.Time        `json:"opened_at"`
	CloseAt        time.Time        `json:"close_at"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
}

// ProfitAt returns the P&L of the position if it were settled at exit.
func (t Trade) ProfitAt(exit decimal.Decimal) decimal.Decimal {
	if t.EntryPrice.IsZero() {
		return decimal.Zero
	}
	diff := exit.Sub(t.EntryPrice)
	if t.Side == SideSell {
		diff = diff.Neg()
	}
	return diff.Div(t.EntryPrice).Mul(t.Amount).Round(8)
}

// TradeStats summarises the simulator panel.
type TradeStats struct {
	DemoBalance decimal.Decimal `json:"demo_balance"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	OpenTrades  int             `json:"open_trades"`
	TotalTrades int             `json:"total_trades"`
	WinRate     float64         `json:"win_rate"`
}
