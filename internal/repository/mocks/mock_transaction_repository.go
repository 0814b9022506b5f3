package mocks

import (
	"context"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, f model.TransactionFilter, pq repository.PageQuery) (*repository.PageResult[model.Transaction], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Transaction]), args.Error(1)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id string, from, to model.TransactionStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *MockTransactionRepository) Stats(ctx context.Context, userID string) (*model.TransactionStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TransactionStats), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
