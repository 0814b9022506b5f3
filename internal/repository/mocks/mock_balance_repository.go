package mocks

import (
	"context"

	"cryptoinvest/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) balance(args mock.Arguments) (*model.Balance, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Balance), args.Error(1)
}

func (m *MockBalanceRepository) Create(ctx context.Context, userID string, balance, demo decimal.Decimal) (*model.Balance, error) {
	return m.balance(m.Called(ctx, userID, balance, demo))
}

func (m *MockBalanceRepository) Get(ctx context.Context, userID string) (*model.Balance, error) {
	return m.balance(m.Called(ctx, userID))
}

func (m *MockBalanceRepository) Credit(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	return m.balance(m.Called(ctx, userID, amount))
}

func (m *MockBalanceRepository) Debit(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	return m.balance(m.Called(ctx, userID, amount))
}

func (m *MockBalanceRepository) Set(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	return m.balance(m.Called(ctx, userID, amount))
}

func (m *MockBalanceRepository) CreditDemo(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	return m.balance(m.Called(ctx, userID, amount))
}

func (m *MockBalanceRepository) DebitDemo(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	return m.balance(m.Called(ctx, userID, amount))
}

func (m *MockBalanceRepository) SetDemo(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	return m.balance(m.Called(ctx, userID, amount))
}
