package mocks

import (
	"context"
	"time"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByReferralCode(ctx context.Context, code string) (*model.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Account], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Account]), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id string, p model.ProfileUpdate) error {
	return m.Called(ctx, id, p).Error(0)
}

func (m *MockUserRepository) UpdatePreferences(ctx context.Context, id string, p model.Preferences) error {
	return m.Called(ctx, id, p).Error(0)
}

func (m *MockUserRepository) UpdateNotifications(ctx context.Context, id string, n model.NotificationSettings) error {
	return m.Called(ctx, id, n).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id string, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id string, status model.UserStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role model.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) UpdateAvatar(ctx context.Context, id string, key string) error {
	return m.Called(ctx, id, key).Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}
