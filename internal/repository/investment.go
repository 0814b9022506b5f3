package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"cryptoinvest/internal/model"
)

// InvestmentRepository persists plan positions and their accrual progress.
type InvestmentRepository interface {
	Create(ctx context.Context, inv *model.Investment) (*model.Investment, error)
	FindByID(ctx context.Context, id string) (*model.Investment, error)
	ListByUser(ctx context.Context, userID string) ([]model.Investment, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Investment], error)
	ListActive(ctx context.Context) ([]model.Investment, error)

	// RecordAccrual advances days_paid from expectedDaysPaid to daysPaid and adds earned.
	// It returns ErrStale when days_paid no longer equals expectedDaysPaid.
	RecordAccrual(ctx context.Context, id string, expectedDaysPaid, daysPaid int, earned decimal.Decimal, at time.Time) error
	// Complete marks an active investment completed; ErrStale if it is not active.
	Complete(ctx context.Context, id string, at time.Time) error

	SumAmount(ctx context.Context) (decimal.Decimal, error)
}
