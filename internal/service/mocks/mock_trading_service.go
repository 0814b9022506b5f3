package mocks

import (
	"context"
	"time"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockTradingService struct {
	mock.Mock
}

func (m *MockTradingService) trade(args mock.Arguments) (*model.Trade, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Trade), args.Error(1)
}

func (m *MockTradingService) Open(ctx context.Context, userID string, in service.OpenTradeInput) (*model.Trade, error) {
	return m.trade(m.Called(ctx, userID, in))
}

func (m *MockTradingService) Close(ctx context.Context, userID, tradeID string) (*model.Trade, error) {
	return m.trade(m.Called(ctx, userID, tradeID))
}

func (m *MockTradingService) CloseDue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockTradingService) History(ctx context.Context, userID string) ([]model.Trade, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Trade), args.Error(1)
}

func (m *MockTradingService) Stats(ctx context.Context, userID string) (*model.TradeStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TradeStats), args.Error(1)
}

func (m *MockTradingService) Reset(ctx context.Context, userID string) (*model.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Balance), args.Error(1)
}
