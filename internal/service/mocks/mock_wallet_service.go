package mocks

import (
	"context"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Balance(ctx context.Context, userID string) (*model.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Balance), args.Error(1)
}

func (m *MockWalletService) RequestDeposit(ctx context.Context, userID string, amount decimal.Decimal, currency string) (*model.Transaction, error) {
	args := m.Called(ctx, userID, amount, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockWalletService) RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, address string) (*model.Transaction, error) {
	args := m.Called(ctx, userID, amount, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockWalletService) Transactions(ctx context.Context, userID string, f model.TransactionFilter, limit, offset int) (*service.ListResult[model.Transaction], error) {
	args := m.Called(ctx, userID, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Transaction]), args.Error(1)
}

func (m *MockWalletService) Stats(ctx context.Context, userID string) (*model.TransactionStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TransactionStats), args.Error(1)
}
