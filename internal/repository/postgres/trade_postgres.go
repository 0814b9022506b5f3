package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

// TradePostgres is a PostgreSQL implementation of repository.TradeRepository.
type TradePostgres struct {
	db *sql.DB
}

// NewTradePostgres creates a new TradePostgres repository.
func NewTradePostgres(db *sql.DB) *TradePostgres {
	return &TradePostgres{db: db}
}

var _ repository.TradeRepository = (*TradePostgres)(nil)

const tradeColumns = `id, user_id, pair, side, amount, entry_price, exit_price, profit, status,
		closed_manually, opened_at, close_at, closed_at`

func scanTrade(s scanner) (*model.Trade, error) {
	var t model.Trade
	if err := s.Scan(
		&t.ID,
		&t.UserID,
		&t.Pair,
		&t.Side,
		&t.Amount,
		&t.EntryPrice,
		&t.ExitPrice,
		&t.Profit,
		&t.Status,
		&t.ClosedManually,
		&t.OpenedAt,
		&t.CloseAt,
		&t.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTrades(rows *sql.Rows) ([]model.Trade, error) {
	defer rows.Close()
	items := make([]model.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts an open trade and returns the stored record.
func (r *TradePostgres) Create(ctx context.Context, t *model.Trade) (*model.Trade, error) {
	q := `
		INSERT INTO trades (id, user_id, pair, side, amount, entry_price, status, opened_at, close_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + tradeColumns
	return scanTrade(r.db.QueryRowContext(ctx, q,
		t.ID,
		t.UserID,
		t.Pair,
		t.Side,
		t.Amount,
		t.EntryPrice,
		t.Status,
		t.OpenedAt,
		t.CloseAt,
	))
}

func (r *TradePostgres) FindByID(ctx context.Context, id string) (*model.Trade, error) {
	return scanTrade(r.db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1`, id))
}

func (r *TradePostgres) ListByUser(ctx context.Context, userID string) ([]model.Trade, error) {
	q := `SELECT ` + tradeColumns + ` FROM trades WHERE user_id = $1 ORDER BY opened_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return collectTrades(rows)
}

func (r *TradePostgres) ListDue(ctx context.Context, now time.Time) ([]model.Trade, error) {
	q := `SELECT ` + tradeColumns + ` FROM trades WHERE status = 'open' AND close_at <= $1 ORDER BY close_at ASC`
	rows, err := r.db.QueryContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	return collectTrades(rows)
}

func (r *TradePostgres) Close(ctx context.Context, id string, exit, profit decimal.Decimal, manual bool, at time.Time) (*model.Trade, error) {
	q := `
		UPDATE trades
		SET status = 'closed', exit_price = $2, profit = $3, closed_manually = $4, closed_at = $5
		WHERE id = $1 AND status = 'open'
		RETURNING ` + tradeColumns
	t, err := scanTrade(r.db.QueryRowContext(ctx, q, id, exit, profit, manual, at))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrStale
	}
	return t, err
}

// DeleteByUser wipes the simulator history of a user.
func (r *TradePostgres) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
