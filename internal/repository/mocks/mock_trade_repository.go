package mocks

import (
	"context"
	"time"

	"cryptoinvest/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockTradeRepository struct {
	mock.Mock
}

func (m *MockTradeRepository) Create(ctx context.Context, t *model.Trade) (*model.Trade, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Trade), args.Error(1)
}

func (m *MockTradeRepository) FindByID(ctx context.Context, id string) (*model.Trade, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Trade), args.Error(1)
}

func (m *MockTradeRepository) ListByUser(ctx context.Context, userID string) ([]model.Trade, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Trade), args.Error(1)
}

func (m *MockTradeRepository) ListDue(ctx context.Context, now time.Time) ([]model.Trade, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Trade), args.Error(1)
}

func (m *MockTradeRepository) Close(ctx context.Context, id string, exit, profit decimal.Decimal, manual bool, at time.Time) (*model.Trade, error) {
	args := m.Called(ctx, id, exit, profit, manual, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Trade), args.Error(1)
}

func (m *MockTradeRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
