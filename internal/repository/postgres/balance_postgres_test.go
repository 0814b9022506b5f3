package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoinvest/internal/repository"
)

var balanceCols = []string{"user_id", "balance", "demo_balance", "updated_at"}

func TestBalancePostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBalancePostgres(db)

	mock.ExpectQuery("INSERT INTO balances").
		WithArgs("u-1", "10", "10000").
		WillReturnRows(sqlmock.NewRows(balanceCols).AddRow("u-1", "10", "10000", time.Now()))

	b, err := repo.Create(context.Background(), "u-1", decimal.NewFromInt(10), decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.Equal(t, "10000", b.DemoBalance.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalancePostgres_Debit(t *testing.T) {
	ctx := context.Background()
	amount := decimal.RequireFromString("25.5")

	t.Run("success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewBalancePostgres(db)

		mock.ExpectQuery("UPDATE balances SET balance = balance - (.+) AND balance >=").
			WithArgs("u-1", "25.5").
			WillReturnRows(sqlmock.NewRows(balanceCols).AddRow("u-1", "74.5", "0", time.Now()))

		b, err := repo.Debit(ctx, "u-1", amount)
		require.NoError(t, err)
		assert.Equal(t, "74.5", b.Balance.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient funds", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewBalancePostgres(db)

		mock.ExpectQuery("UPDATE balances SET balance = balance -").
			WithArgs("u-1", "25.5").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT (.+) FROM balances WHERE user_id = ?").
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows(balanceCols).AddRow("u-1", "3", "0", time.Now()))

		b, err := repo.Debit(ctx, "u-1", amount)
		assert.ErrorIs(t, err, repository.ErrInsufficientFunds)
		assert.Nil(t, b)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing account", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewBalancePostgres(db)

		mock.ExpectQuery("UPDATE balances SET balance = balance -").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT (.+) FROM balances").WillReturnError(sql.ErrNoRows)

		_, err := repo.Debit(ctx, "ghost", amount)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestBalancePostgres_DebitDemo(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBalancePostgres(db)

	mock.ExpectQuery("UPDATE balances SET demo_balance = demo_balance - (.+) AND demo_balance >=").
		WithArgs("u-1", "100").
		WillReturnRows(sqlmock.NewRows(balanceCols).AddRow("u-1", "0", "9900", time.Now()))

	b, err := repo.DebitDemo(context.Background(), "u-1", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "9900", b.DemoBalance.String())
}

func TestBalancePostgres_SetAndCredit(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewBalancePostgres(db)

	mock.ExpectQuery("UPDATE balances SET balance = \\$2").
		WithArgs("u-1", "500").
		WillReturnRows(sqlmock.NewRows(balanceCols).AddRow("u-1", "500", "0", time.Now()))
	b, err := repo.Set(ctx, "u-1", decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, "500", b.Balance.String())

	mock.ExpectQuery("UPDATE balances SET demo_balance = demo_balance \\+").
		WithArgs("u-1", "110").
		WillReturnRows(sqlmock.NewRows(balanceCols).AddRow("u-1", "500", "10110", time.Now()))
	b, err = repo.CreditDemo(ctx, "u-1", decimal.NewFromInt(110))
	require.NoError(t, err)
	assert.Equal(t, "10110", b.DemoBalance.String())

	assert.NoError(t, mock.ExpectationsWereMet())
}
