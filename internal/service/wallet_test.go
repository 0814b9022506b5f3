package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
	repoMocks "cryptoinvest/internal/repository/mocks"
)

func TestWalletService_RequestDeposit(t *testing.T) {
	feed := stubFeed{"BTC": "45000", "ETH": "3200"}

	tests := []struct {
		name     string
		amount   string
		currency string
		wantUSD  string
		wantDesc string
		wantErr  error
	}{
		{name: "usd default", amount: "250", currency: "", wantUSD: "250", wantDesc: "Depósito"},
		{name: "btc converted", amount: "0.01", currency: "btc", wantUSD: "450", wantDesc: "Depósito de 0.01 BTC"},
		{name: "zero", amount: "0", currency: "USD", wantErr: ErrInvalidAmount},
		{name: "negative", amount: "-5", currency: "USD", wantErr: ErrInvalidAmount},
		{name: "unsupported", amount: "5", currency: "DOGE", wantErr: ErrUnsupportedCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := new(repoMocks.MockTransactionRepository)
			balances := new(repoMocks.MockBalanceRepository)
			if tt.wantErr == nil {
				txs.On("Create", mock.Anything, mock.MatchedBy(func(tx *model.Transaction) bool {
					return tx.Type == model.TxDeposit && tx.Status == model.TxPending && tx.Amount.Equal(dec(tt.wantUSD)) &&
						tx.Currency == "USD" && tx.Description == tt.wantDesc
				})).Return(&model.Transaction{ID: "tx-1", Status: model.TxPending}, nil)
			}

			tx, err := NewWalletService(balances, txs, feed, nil).RequestDeposit(context.Background(), "u-1", dec(tt.amount), tt.currency)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				txs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "tx-1", tx.ID)
			balances.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWalletService_RequestWithdrawal(t *testing.T) {
	ctx := context.Background()

	t.Run("debits and records pending", func(t *testing.T) {
		txs := new(repoMocks.MockTransactionRepository)
		balances := new(repoMocks.MockBalanceRepository)
		balances.On("Debit", mock.Anything, "u-1", decEq("40")).Return(&model.Balance{Balance: dec("60")}, nil)
		txs.On("Create", mock.Anything, mock.MatchedBy(func(tx *model.Transaction) bool {
			return tx.Type == model.TxWithdrawal && tx.Status == model.TxPending && tx.Description == "Retiro a 0xabc"
		})).Return(&model.Transaction{ID: "tx-2"}, nil)

		_, err := NewWalletService(balances, txs, stubFeed{}, nil).RequestWithdrawal(ctx, "u-1", dec("40"), " 0xabc ")
		require.NoError(t, err)
		balances.AssertExpectations(t)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		balances := new(repoMocks.MockBalanceRepository)
		balances.On("Debit", mock.Anything, "u-1", mock.Anything).Return(nil, repository.ErrInsufficientFunds)

		_, err := NewWalletService(balances, new(repoMocks.MockTransactionRepository), stubFeed{}, nil).
			RequestWithdrawal(ctx, "u-1", dec("1000"), "")
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("refunds when recording fails", func(t *testing.T) {
		txs := new(repoMocks.MockTransactionRepository)
		balances := new(repoMocks.MockBalanceRepository)
		balances.On("Debit", mock.Anything, "u-1", decEq("40")).Return(&model.Balance{}, nil)
		txs.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed"))
		balances.On("Credit", mock.Anything, "u-1", decEq("40")).Return(&model.Balance{}, nil)

		_, err := NewWalletService(balances, txs, stubFeed{}, nil).RequestWithdrawal(ctx, "u-1", dec("40"), "")
		assert.ErrorContains(t, err, "insert failed")
		balances.AssertExpectations(t)
	})
}

func TestWalletService_Transactions(t *testing.T) {
	txs := new(repoMocks.MockTransactionRepository)
	txs.On("List", mock.Anything,
		model.TransactionFilter{UserID: "u-1", Type: model.TxDeposit},
		repository.PageQuery{Limit: 10, Offset: 0},
	).Return(&repository.PageResult[model.Transaction]{Items: []model.Transaction{{ID: "tx-1"}}, Total: 7}, nil)
	svc := NewWalletService(new(repoMocks.MockBalanceRepository), txs, stubFeed{}, nil)

	res, err := svc.Transactions(context.Background(), "u-1", model.TransactionFilter{UserID: "spoofed", Type: model.TxDeposit}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Total)
	assert.Len(t, res.Items, 1)

	_, err = svc.Transactions(context.Background(), "u-1", model.TransactionFilter{Type: "bribe"}, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Transactions(context.Background(), "u-1", model.TransactionFilter{Status: "lost"}, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWalletService_Balance(t *testing.T) {
	balances := new(repoMocks.MockBalanceRepository)
	balances.On("Get", mock.Anything, "u-1").Return(&model.Balance{UserID: "u-1", Balance: dec("12.5")}, nil)
	balances.On("Get", mock.Anything, "gone").Return(nil, sql.ErrNoRows)
	svc := NewWalletService(balances, new(repoMocks.MockTransactionRepository), stubFeed{}, nil)

	b, err := svc.Balance(context.Background(), "u-1")
	require.NoError(t, err)
	assert.True(t, dec("12.5").Equal(b.Balance))

	_, err = svc.Balance(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}
