package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
	repoMocks "cryptoinvest/internal/repository/mocks"
)

type adminFixture struct {
	users       *repoMocks.MockUserRepository
	balances    *repoMocks.MockBalanceRepository
	investments *repoMocks.MockInvestmentRepository
	txs         *repoMocks.MockTransactionRepository
	svc         AdminService
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		users:       new(repoMocks.MockUserRepository),
		balances:    new(repoMocks.MockBalanceRepository),
		investments: new(repoMocks.MockInvestmentRepository),
		txs:         new(repoMocks.MockTransactionRepository),
	}
	f.svc = NewAdminService(f.users, f.balances, f.investments, f.txs, nil)
	return f
}

func TestAdminService_Stats(t *testing.T) {
	f := newAdminFixture()
	f.users.On("Count", mock.Anything).Return(42, nil)
	f.users.On("CountSince", mock.Anything, mock.Anything).Return(17, nil)
	f.investments.On("SumAmount", mock.Anything).Return(dec("125000.5"), nil)
	f.txs.On("Count", mock.Anything).Return(310, nil)

	st, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, st.TotalUsers)
	assert.Equal(t, 17, st.ActiveUsers)
	assert.True(t, dec("125000.5").Equal(st.TotalInvested))
	assert.Equal(t, 310, st.TotalTransactions)
}

func TestAdminService_SetStatus(t *testing.T) {
	f := newAdminFixture()
	f.users.On("UpdateStatus", mock.Anything, "u-1", model.UserBlocked).Return(nil)

	assert.NoError(t, f.svc.SetStatus(context.Background(), "u-1", model.UserBlocked))
	assert.ErrorIs(t, f.svc.SetStatus(context.Background(), "u-1", "frozen"), ErrInvalidInput)
	f.users.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

func TestAdminService_SetBalance(t *testing.T) {
	f := newAdminFixture()
	f.balances.On("Get", mock.Anything, "u-1").Return(&model.Balance{Balance: dec("100")}, nil)
	f.balances.On("Set", mock.Anything, "u-1", decEq("80")).Return(&model.Balance{Balance: dec("80")}, nil)
	f.txs.On("Create", mock.Anything, mock.MatchedBy(func(tx *model.Transaction) bool {
		return tx.Type == model.TxAdjustment && tx.Amount.Equal(dec("-20"))
	})).Return(&model.Transaction{}, nil)

	b, err := f.svc.SetBalance(context.Background(), "u-1", dec("80"))
	require.NoError(t, err)
	assert.True(t, dec("80").Equal(b.Balance))
	f.txs.AssertExpectations(t)

	_, err = f.svc.SetBalance(context.Background(), "u-1", dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAdminService_Deposit(t *testing.T) {
	t.Run("credits and records completed deposit", func(t *testing.T) {
		f := newAdminFixture()
		f.balances.On("Credit", mock.Anything, "u-1", decEq("500")).Return(&model.Balance{}, nil)
		f.txs.On("Create", mock.Anything, mock.MatchedBy(func(tx *model.Transaction) bool {
			return tx.Type == model.TxDeposit && tx.Status == model.TxCompleted && tx.Description == "Bono manual"
		})).Return(&model.Transaction{ID: "tx-1"}, nil)

		tx, err := f.svc.Deposit(context.Background(), "u-1", dec("500"), " Bono manual ")
		require.NoError(t, err)
		assert.Equal(t, "tx-1", tx.ID)
	})

	t.Run("reverses credit when recording fails", func(t *testing.T) {
		f := newAdminFixture()
		f.balances.On("Credit", mock.Anything, "u-1", decEq("500")).Return(&model.Balance{}, nil)
		f.txs.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed"))
		f.balances.On("Debit", mock.Anything, "u-1", decEq("500")).Return(&model.Balance{}, nil)

		_, err := f.svc.Deposit(context.Background(), "u-1", dec("500"), "")
		assert.ErrorContains(t, err, "insert failed")
		f.balances.AssertExpectations(t)
	})
}

func TestAdminService_Review(t *testing.T) {
	ctx := context.Background()
	deposit := model.Transaction{ID: "tx-d", UserID: "u-1", Type: model.TxDeposit, Amount: dec("250"), Status: model.TxPending}
	withdrawal := model.Transaction{ID: "tx-w", UserID: "u-1", Type: model.TxWithdrawal, Amount: dec("40"), Status: model.TxPending}

	t.Run("approve deposit credits", func(t *testing.T) {
		f := newAdminFixture()
		tx := deposit
		f.txs.On("FindByID", mock.Anything, "tx-d").Return(&tx, nil)
		f.txs.On("UpdateStatus", mock.Anything, "tx-d", model.TxPending, model.TxCompleted).Return(nil)
		f.balances.On("Credit", mock.Anything, "u-1", decEq("250")).Return(&model.Balance{}, nil)

		got, err := f.svc.Approve(ctx, "tx-d")
		require.NoError(t, err)
		assert.Equal(t, model.TxCompleted, got.Status)
		f.balances.AssertExpectations(t)
	})

	t.Run("approve withdrawal does not move money", func(t *testing.T) {
		f := newAdminFixture()
		tx := withdrawal
		f.txs.On("FindByID", mock.Anything, "tx-w").Return(&tx, nil)
		f.txs.On("UpdateStatus", mock.Anything, "tx-w", model.TxPending, model.TxCompleted).Return(nil)

		_, err := f.svc.Approve(ctx, "tx-w")
		require.NoError(t, err)
		f.balances.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reject withdrawal refunds", func(t *testing.T) {
		f := newAdminFixture()
		tx := withdrawal
		f.txs.On("FindByID", mock.Anything, "tx-w").Return(&tx, nil)
		f.txs.On("UpdateStatus", mock.Anything, "tx-w", model.TxPending, model.TxFailed).Return(nil)
		f.balances.On("Credit", mock.Anything, "u-1", decEq("40")).Return(&model.Balance{}, nil)

		got, err := f.svc.Reject(ctx, "tx-w")
		require.NoError(t, err)
		assert.Equal(t, model.TxFailed, got.Status)
		f.balances.AssertExpectations(t)
	})

	t.Run("reject deposit does not move money", func(t *testing.T) {
		f := newAdminFixture()
		tx := deposit
		f.txs.On("FindByID", mock.Anything, "tx-d").Return(&tx, nil)
		f.txs.On("UpdateStatus", mock.Anything, "tx-d", model.TxPending, model.TxFailed).Return(nil)

		_, err := f.svc.Reject(ctx, "tx-d")
		require.NoError(t, err)
		f.balances.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already reviewed", func(t *testing.T) {
		f := newAdminFixture()
		tx := deposit
		tx.Status = model.TxCompleted
		f.txs.On("FindByID", mock.Anything, "tx-d").Return(&tx, nil)

		_, err := f.svc.Approve(ctx, "tx-d")
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("concurrent review", func(t *testing.T) {
		f := newAdminFixture()
		tx := deposit
		f.txs.On("FindByID", mock.Anything, "tx-d").Return(&tx, nil)
		f.txs.On("UpdateStatus", mock.Anything, "tx-d", model.TxPending, model.TxCompleted).Return(repository.ErrStale)

		_, err := f.svc.Approve(ctx, "tx-d")
		assert.ErrorIs(t, err, ErrNotPending)
		f.balances.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed deposit credit reopens the transaction", func(t *testing.T) {
		f := newAdminFixture()
		tx := deposit
		f.txs.On("FindByID", mock.Anything, "tx-d").Return(&tx, nil)
		f.txs.On("UpdateStatus", mock.Anything, "tx-d", model.TxPending, model.TxCompleted).Return(nil).Once()
		f.balances.On("Credit", mock.Anything, "u-1", decEq("250")).Return(nil, errors.New("conn reset"))
		f.txs.On("UpdateStatus", mock.Anything, "tx-d", model.TxCompleted, model.TxPending).Return(nil).Once()

		_, err := f.svc.Approve(ctx, "tx-d")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "credit deposit: conn reset")
		assert.Equal(t, model.TxPending, tx.Status)
		f.txs.AssertExpectations(t)
	})

	t.Run("failed refund reopens the transaction", func(t *testing.T) {
		f := newAdminFixture()
		tx := withdrawal
		reopenErr := errors.New("deadlock")
		f.txs.On("FindByID", mock.Anything, "tx-w").Return(&tx, nil)
		f.txs.On("UpdateStatus", mock.Anything, "tx-w", model.TxPending, model.TxFailed).Return(nil).Once()
		f.balances.On("Credit", mock.Anything, "u-1", decEq("40")).Return(nil, errors.New("conn reset"))
		f.txs.On("UpdateStatus", mock.Anything, "tx-w", model.TxFailed, model.TxPending).Return(reopenErr).Once()

		_, err := f.svc.Reject(ctx, "tx-w")
		require.Error(t, err)
		assert.ErrorIs(t, err, reopenErr)
		assert.Contains(t, err.Error(), "refund withdrawal: conn reset")
		f.txs.AssertExpectations(t)
	})

	t.Run("not reviewable", func(t *testing.T) {
		f := newAdminFixture()
		f.txs.On("FindByID", mock.Anything, "tx-e").Return(&model.Transaction{ID: "tx-e", Type: model.TxEarning, Status: model.TxPending}, nil)

		_, err := f.svc.Reject(ctx, "tx-e")
		assert.ErrorIs(t, err, ErrNotReviewable)
	})
}

func TestAdminService_Listings(t *testing.T) {
	f := newAdminFixture()
	f.users.On("List", mock.Anything, repository.PageQuery{Limit: 100, Offset: 5}).
		Return(&repository.PageResult[model.Account]{Items: []model.Account{{}}, Total: 1}, nil)
	f.investments.On("List", mock.Anything, repository.PageQuery{Limit: 10, Offset: 0}).
		Return(&repository.PageResult[model.Investment]{Total: 0}, nil)
	f.txs.On("List", mock.Anything, model.TransactionFilter{Status: model.TxPending}, repository.PageQuery{Limit: 20, Offset: 0}).
		Return(&repository.PageResult[model.Transaction]{Items: []model.Transaction{{ID: "tx-1"}}, Total: 1}, nil)

	users, err := f.svc.Users(context.Background(), 500, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, users.Total)

	invs, err := f.svc.Investments(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, invs.Total)

	txs, err := f.svc.Transactions(context.Background(), model.TransactionFilter{Status: model.TxPending}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", txs.Items[0].ID)
}
