package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

// BalancePostgres is a PostgreSQL implementation of repository.BalanceRepository.
// Every mutation is a single UPDATE ... RETURNING so concurrent requests never read-modify-write.
type BalancePostgres struct {
	db *sql.DB
}

// NewBalancePostgres creates a new BalancePostgres repository.
func NewBalancePostgres(db *sql.DB) *BalancePostgres {
	return &BalancePostgres{db: db}
}

var _ repository.BalanceRepository = (*BalancePostgres)(nil)

const balanceReturning = `RETURNING user_id, balance, demo_balance, updated_at`

func scanBalance(row *sql.Row) (*model.Balance, error) {
	var b model.Balance
	if err := row.Scan(&b.UserID, &b.Balance, &b.DemoBalance, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create opens the balance row of a new user.
func (r *BalancePostgres) Create(ctx context.Context, userID string, balance, demo decimal.Decimal) (*model.Balance, error) {
	q := `
		INSERT INTO balances (user_id, balance, demo_balance, updated_at)
		VALUES ($1, $2, $3, now())
		` + balanceReturning
	return scanBalance(r.db.QueryRowContext(ctx, q, userID, balance, demo))
}

func (r *BalancePostgres) Get(ctx context.Context, userID string) (*model.Balance, error) {
	const q = `SELECT user_id, balance, demo_balance, updated_at FROM balances WHERE user_id = $1`
	return scanBalance(r.db.QueryRowContext(ctx, q, userID))
}

func (r *BalancePostgres) Credit(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	q := `UPDATE balances SET balance = balance + $2, updated_at = now() WHERE user_id = $1 ` + balanceReturning
	return scanBalance(r.db.QueryRowContext(ctx, q, userID, amount))
}

func (r *BalancePostgres) Debit(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	q := `UPDATE balances SET balance = balance - $2, updated_at = now() WHERE user_id = $1 AND balance >= $2 ` + balanceReturning
	return r.conditional(ctx, q, userID, amount)
}

// Set overwrites the real balance, used by administrators.
func (r *BalancePostgres) Set(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	q := `UPDATE balances SET balance = $2, updated_at = now() WHERE user_id = $1 ` + balanceReturning
	return scanBalance(r.db.QueryRowContext(ctx, q, userID, amount))
}

func (r *BalancePostgres) CreditDemo(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	q := `UPDATE balances SET demo_balance = demo_balance + $2, updated_at = now() WHERE user_id = $1 ` + balanceReturning
	return scanBalance(r.db.QueryRowContext(ctx, q, userID, amount))
}

func (r *BalancePostgres) DebitDemo(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	q := `UPDATE balances SET demo_balance = demo_balance - $2, updated_at = now() WHERE user_id = $1 AND demo_balance >= $2 ` + balanceReturning
	return r.conditional(ctx, q, userID, amount)
}

func (r *BalancePostgres) SetDemo(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	q := `UPDATE balances SET demo_balance = $2, updated_at = now() WHERE user_id = $1 ` + balanceReturning
	return scanBalance(r.db.QueryRowContext(ctx, q, userID, amount))
}

// conditional runs a guarded debit. A missing row after the guard is told apart from
// a missing account with a follow-up lookup.
func (r *BalancePostgres) conditional(ctx context.Context, q, userID string, amount decimal.Decimal) (*model.Balance, error) {
	b, err := scanBalance(r.db.QueryRowContext(ctx, q, userID, amount))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, err := r.Get(ctx, userID); err != nil {
		return nil, err
	}
	return nil, repository.ErrInsufficientFunds
}
