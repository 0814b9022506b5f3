package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a tier of the investment catalogue.
type Plan struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	MinAmount    decimal.Decimal `json:"min_amount"`
	MaxAmount    decimal.Decimal `json:"max_amount"`
	DailyReturn  decimal.Decimal `json:"daily_return"`
	DurationDays int             `json:"duration_days"`
	Description  string          `json:"description"`
	Currencies   []string        `json:"currencies"`
}

// TotalROI is the percentage paid over the full duration.
func (p Plan) TotalROI() decimal.Decimal {
	return p.DailyReturn.Mul(decimal.NewFromInt(int64(p.DurationDays)))
}

// InvestmentStatus is the lifecycle of an investment.
type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "active"
	InvestmentCompleted InvestmentStatus = "completed"
)

// Investment is a position in a plan. Amount is always USD.
type Investment struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	PlanID         int              `json:"plan_id"`
	PlanName       string           `json:"plan_name"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       string           `json:"currency"`
	OriginalAmount decimal.Decimal  `json:"original_amount"`
	DailyReturn    decimal.Decimal  `json:"daily_return"`
	DurationDays   int              `json:"duration_days"`
	DaysPaid       int              `json:"days_paid"`
	Earned         decimal.Decimal  `json:"earned"`
	Status         InvestmentStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccrualAt  *time.Time       `json:"last_accrual_at,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

// DailyEarning is the amount credited for one elapsed day.
func (i Investment) DailyEarning() decimal.Decimal {
	return i.Amount.Mul(i.DailyReturn).Div(decimal.NewFromInt(100)).Round(8)
}

// DaysDue returns how many whole days have elapsed since creation, capped at the duration.
func (i Investment) DaysDue(now time.Time) int {
	if now.Before(i.CreatedAt) {
		return 0
	}
	days := int(now.Sub(i.CreatedAt) / (24 * time.Hour))
	if days > i.DurationDays {
		days = i.DurationDays
	}
	return days
}
