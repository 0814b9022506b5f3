package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

var transactionCols = []string{"id", "user_id", "type", "amount", "currency", "description", "status", "created_at", "updated_at"}

func TestTransactionPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTransactionPostgres(db)
	now := time.Now().UTC()

	tx := &model.Transaction{
		ID:          "t-1",
		UserID:      "u-1",
		Type:        model.TxDeposit,
		Amount:      decimal.NewFromInt(250),
		Currency:    "USD",
		Description: "Depósito",
		Status:      model.TxPending,
		CreatedAt:   now,
	}

	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs("t-1", "u-1", "deposit", "250", "USD", "Depósito", "pending", now).
		WillReturnRows(sqlmock.NewRows(transactionCols).
			AddRow("t-1", "u-1", "deposit", "250", "USD", "Depósito", "pending", now, now))

	out, err := repo.Create(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, model.TxPending, out.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionPostgres_List(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("with filters", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewTransactionPostgres(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND type = $2 AND status = $3")).
			WithArgs("u-1", "withdrawal", "completed").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND type = $2 AND status = $3 ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5")).
			WithArgs("u-1", "withdrawal", "completed", 5, 10).
			WillReturnRows(sqlmock.NewRows(transactionCols).
				AddRow("t-1", "u-1", "withdrawal", "40", "USD", "", "completed", now, now))

		res, err := repo.List(ctx, model.TransactionFilter{UserID: "u-1", Type: model.TxWithdrawal, Status: model.TxCompleted},
			repository.PageQuery{Limit: 5, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		require.Len(t, res.Items, 1)
		assert.Equal(t, model.TxWithdrawal, res.Items[0].Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no filters", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewTransactionPostgres(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM transactions")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta("FROM transactions ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2")).
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(transactionCols))

		res, err := repo.List(ctx, model.TransactionFilter{}, repository.PageQuery{})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionPostgres_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewTransactionPostgres(db)

	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs("t-1", "pending", "completed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdateStatus(ctx, "t-1", model.TxPending, model.TxCompleted))

	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs("t-1", "pending", "failed").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "t-1", model.TxPending, model.TxFailed), repository.ErrStale)
}

func TestTransactionPostgres_Stats(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTransactionPostgres(db)

	mock.ExpectQuery("FILTER \\(WHERE type = 'deposit'\\)").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"deposits", "withdrawals", "invested"}).AddRow("1500", "200.25", "1000"))

	s, err := repo.Stats(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "1500", s.TotalDeposits.String())
	assert.Equal(t, "200.25", s.TotalWithdrawals.String())
	assert.Equal(t, "1000", s.TotalInvested.String())
}
