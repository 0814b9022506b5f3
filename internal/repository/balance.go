package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"cryptoinvest/internal/model"
)

// BalanceRepository moves money between rows with single-statement updates.
// Debits are conditional and never leave a negative balance.
type BalanceRepository interface {
	Create(ctx context.Context, userID string, balance, demo decimal.Decimal) (*model.Balance, error)
	Get(ctx context.Context, userID string) (*model.Balance, error)

	Credit(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error)
	// Debit returns ErrInsufficientFunds when balance < amount.
	Debit(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error)
	Set(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error)

	CreditDemo(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error)
	// DebitDemo returns ErrInsufficientFunds when demo_balance < amount.
	DebitDemo(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error)
	SetDemo(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error)
}
