package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"cryptoinvest/internal/model"
)

// TradeRepository persists simulator positions.
type TradeRepository interface {
	Create(ctx context.Context, t *model.Trade) (*model.Trade, error)
	FindByID(ctx context.Context, id string) (*model.Trade, error)
	// ListByUser returns trades newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Trade, error)
	// ListDue returns open trades whose close_at is not after now.
	ListDue(ctx context.Context, now time.Time) ([]model.Trade, error)

	// Close settles an open trade; ErrStale if it was already closed.
	Close(ctx context.Context, id string, exit, profit decimal.Decimal, manual bool, at time.Time) (*model.Trade, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
