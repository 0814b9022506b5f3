package mocks

import (
	"context"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Stats(ctx context.Context) (*service.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DashboardStats), args.Error(1)
}

func (m *MockAdminService) Users(ctx context.Context, limit, offset int) (*service.ListResult[model.Account], error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Account]), args.Error(1)
}

func (m *MockAdminService) SetStatus(ctx context.Context, userID string, status model.UserStatus) error {
	return m.Called(ctx, userID, status).Error(0)
}

func (m *MockAdminService) SetBalance(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Balance), args.Error(1)
}

func (m *MockAdminService) Deposit(ctx context.Context, userID string, amount decimal.Decimal, note string) (*model.Transaction, error) {
	args := m.Called(ctx, userID, amount, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockAdminService) Investments(ctx context.Context, limit, offset int) (*service.ListResult[model.Investment], error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Investment]), args.Error(1)
}

func (m *MockAdminService) Transactions(ctx context.Context, f model.TransactionFilter, limit, offset int) (*service.ListResult[model.Transaction], error) {
	args := m.Called(ctx, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Transaction]), args.Error(1)
}

func (m *MockAdminService) review(args mock.Arguments) (*model.Transaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockAdminService) Approve(ctx context.Context, txID string) (*model.Transaction, error) {
	return m.review(m.Called(ctx, txID))
}

func (m *MockAdminService) Reject(ctx context.Context, txID string) (*model.Transaction, error) {
	return m.review(m.Called(ctx, txID))
}
