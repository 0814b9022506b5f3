package mocks

import (
	"context"
	"time"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Create(ctx context.Context, inv *model.Investment) (*model.Investment, error) {
	args := m.Called(ctx, inv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) FindByID(ctx context.Context, id string) (*model.Investment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListByUser(ctx context.Context, userID string) ([]model.Investment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Investment], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Investment]), args.Error(1)
}

func (m *MockInvestmentRepository) ListActive(ctx context.Context) ([]model.Investment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) RecordAccrual(ctx context.Context, id string, expectedDaysPaid, daysPaid int, earned decimal.Decimal, at time.Time) error {
	return m.Called(ctx, id, expectedDaysPaid, daysPaid, earned, at).Error(0)
}

func (m *MockInvestmentRepository) Complete(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockInvestmentRepository) SumAmount(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
