package mocks

import (
	"context"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockReferralService struct {
	mock.Mock
}

func (m *MockReferralService) Summary(ctx context.Context, userID string) (*service.ReferralSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReferralSummary), args.Error(1)
}

func (m *MockReferralService) List(ctx context.Context, userID string) ([]model.Referral, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Referral), args.Error(1)
}

func (m *MockReferralService) Levels() []service.ReferralLevel {
	return m.Called().Get(0).([]service.ReferralLevel)
}
