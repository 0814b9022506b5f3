package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

// InvestmentPostgres is a PostgreSQL implementation of repository.InvestmentRepository.
type InvestmentPostgres struct {
	db *sql.DB
}

// NewInvestmentPostgres creates a new InvestmentPostgres repository.
func NewInvestmentPostgres(db *sql.DB) *InvestmentPostgres {
	return &InvestmentPostgres{db: db}
}

var _ repository.InvestmentRepository = (*InvestmentPostgres)(nil)

const investmentColumns = `id, user_id, plan_id, plan_name, amount, currency, original_amount, daily_return,
		duration_days, days_paid, earned, status, created_at, last_accrual_at, completed_at`

func scanInvestment(s scanner) (*model.Investment, error) {
	var i model.Investment
	if err := s.Scan(
		&i.ID,
		&i.UserID,
		&i.PlanID,
		&i.PlanName,
		&i.Amount,
		&i.Currency,
		&i.OriginalAmount,
		&i.DailyReturn,
		&i.DurationDays,
		&i.DaysPaid,
		&i.Earned,
		&i.Status,
		&i.CreatedAt,
		&i.LastAccrualAt,
		&i.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &i, nil
}

func collectInvestments(rows *sql.Rows) ([]model.Investment, error) {
	defer rows.Close()
	items := make([]model.Investment, 0)
	for rows.Next() {
		i, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new investment row and returns the stored record.
func (r *InvestmentPostgres) Create(ctx context.Context, inv *model.Investment) (*model.Investment, error) {
	q := `
		INSERT INTO investments (id, user_id, plan_id, plan_name, amount, currency, original_amount,
			daily_return, duration_days, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + investmentColumns
	return scanInvestment(r.db.QueryRowContext(ctx, q,
		inv.ID,
		inv.UserID,
		inv.PlanID,
		inv.PlanName,
		inv.Amount,
		inv.Currency,
		inv.OriginalAmount,
		inv.DailyReturn,
		inv.DurationDays,
		inv.Status,
		inv.CreatedAt,
	))
}

func (r *InvestmentPostgres) FindByID(ctx context.Context, id string) (*model.Investment, error) {
	return scanInvestment(r.db.QueryRowContext(ctx, `SELECT `+investmentColumns+` FROM investments WHERE id = $1`, id))
}

// ListByUser returns the investments of a user, newest first.
func (r *InvestmentPostgres) ListByUser(ctx context.Context, userID string) ([]model.Investment, error) {
	q := `SELECT ` + investmentColumns + ` FROM investments WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return collectInvestments(rows)
}

// List returns every investment using LIMIT/OFFSET pagination and a total count.
func (r *InvestmentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Investment], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM investments`).Scan(&total); err != nil {
		return nil, err
	}

	limit, offset := clampPage(pq.Limit, pq.Offset)
	q := `SELECT ` + investmentColumns + ` FROM investments ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	items, err := collectInvestments(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Investment]{Items: items, Total: total}, nil
}

// ListActive returns every investment still accruing, oldest first.
func (r *InvestmentPostgres) ListActive(ctx context.Context) ([]model.Investment, error) {
	q := `SELECT ` + investmentColumns + ` FROM investments WHERE status = 'active' ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectInvestments(rows)
}

func (r *InvestmentPostgres) RecordAccrual(ctx context.Context, id string, expectedDaysPaid, daysPaid int, earned decimal.Decimal, at time.Time) error {
	const q = `
		UPDATE investments
		SET days_paid = $3, earned = earned + $4, last_accrual_at = $5
		WHERE id = $1 AND days_paid = $2 AND status = 'active'
	`
	res, err := r.db.ExecContext(ctx, q, id, expectedDaysPaid, daysPaid, earned, at)
	return staleIfNone(res, err)
}

func (r *InvestmentPostgres) Complete(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE investments SET status = 'completed', completed_at = $2 WHERE id = $1 AND status = 'active'`
	res, err := r.db.ExecContext(ctx, q, id, at)
	return staleIfNone(res, err)
}

// SumAmount is the principal of every investment ever made.
func (r *InvestmentPostgres) SumAmount(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM investments`).Scan(&sum)
	return sum, err
}
