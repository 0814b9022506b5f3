package mocks

import (
	"context"
	"time"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockInvestmentService struct {
	mock.Mock
}

func (m *MockInvestmentService) Plans() []model.Plan {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Plan)
}

func (m *MockInvestmentService) Quote(in service.InvestInput) (*service.InvestmentQuote, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvestmentQuote), args.Error(1)
}

func (m *MockInvestmentService) Invest(ctx context.Context, userID string, in service.InvestInput) (*model.Investment, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Investment), args.Error(1)
}

func (m *MockInvestmentService) List(ctx context.Context, userID string) ([]model.Investment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Investment), args.Error(1)
}

func (m *MockInvestmentService) Accrue(ctx context.Context, now time.Time) (*service.AccrualReport, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AccrualReport), args.Error(1)
}
