package repository

import (
	"context"

	"cryptoinvest/internal/model"
)

// TransactionRepository persists the money movement history.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) (*model.Transaction, error)
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter, pq PageQuery) (*PageResult[model.Transaction], error)

	// UpdateStatus moves a transaction from one status to another; ErrStale if it is not in from.
	UpdateStatus(ctx context.Context, id string, from, to model.TransactionStatus) error

	// Stats sums completed deposits, withdrawals and investments of a user.
	Stats(ctx context.Context, userID string) (*model.TransactionStats, error)
	Count(ctx context.Context) (int, error)
}
