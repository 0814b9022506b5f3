package mocks

import (
	"context"

	"cryptoinvest/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) Create(ctx context.Context, r *model.Referral) (*model.Referral, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Referral), args.Error(1)
}

func (m *MockReferralRepository) ListByReferrer(ctx context.Context, referrerID string) ([]model.Referral, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Referral), args.Error(1)
}

func (m *MockReferralRepository) SumBonus(ctx context.Context, referrerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, referrerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
