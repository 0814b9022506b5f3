package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

// TransactionPostgres is a PostgreSQL implementation of repository.TransactionRepository.
type TransactionPostgres struct {
	db *sql.DB
}

// NewTransactionPostgres creates a new TransactionPostgres repository.
func NewTransactionPostgres(db *sql.DB) *TransactionPostgres {
	return &TransactionPostgres{db: db}
}

var _ repository.TransactionRepository = (*TransactionPostgres)(nil)

const transactionColumns = `id, user_id, type, amount, currency, description, status, created_at, updated_at`

func scanTransaction(s scanner) (*model.Transaction, error) {
	var t model.Transaction
	if err := s.Scan(
		&t.ID,
		&t.UserID,
		&t.Type,
		&t.Amount,
		&t.Currency,
		&t.Description,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new transaction row and returns the stored record.
func (r *TransactionPostgres) Create(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	q := `
		INSERT INTO transactions (id, user_id, type, amount, currency, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING ` + transactionColumns
	return scanTransaction(r.db.QueryRowContext(ctx, q,
		tx.ID,
		tx.UserID,
		tx.Type,
		tx.Amount,
		tx.Currency,
		tx.Description,
		tx.Status,
		tx.CreatedAt,
	))
}

func (r *TransactionPostgres) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	return scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
}

// List returns transactions matching f, newest first, with a total count.
func (r *TransactionPostgres) List(ctx context.Context, f model.TransactionFilter, pq repository.PageQuery) (*repository.PageResult[model.Transaction], error) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != "" {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, offset := clampPage(pq.Limit, pq.Offset)
	q := fmt.Sprintf(`SELECT %s FROM transactions%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Transaction]{Items: items, Total: total}, nil
}

func (r *TransactionPostgres) UpdateStatus(ctx context.Context, id string, from, to model.TransactionStatus) error {
	const q = `UPDATE transactions SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, q, id, from, to)
	return staleIfNone(res, err)
}

func (r *TransactionPostgres) Stats(ctx context.Context, userID string) (*model.TransactionStats, error) {
	const q = `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'deposit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'withdrawal'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'investment'), 0)
		FROM transactions
		WHERE user_id = $1 AND status = 'completed'
	`
	var s model.TransactionStats
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&s.TotalDeposits, &s.TotalWithdrawals, &s.TotalInvested); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *TransactionPostgres) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	return n, err
}
