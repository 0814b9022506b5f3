package mocks

import (
	"context"
	"io"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) profile(args mock.Arguments) (*service.Profile, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Profile), args.Error(1)
}

func (m *MockProfileService) Get(ctx context.Context, userID string) (*service.Profile, error) {
	return m.profile(m.Called(ctx, userID))
}

func (m *MockProfileService) UpdateInfo(ctx context.Context, userID string, p model.ProfileUpdate) (*service.Profile, error) {
	return m.profile(m.Called(ctx, userID, p))
}

func (m *MockProfileService) UpdatePreferences(ctx context.Context, userID string, p model.Preferences) (*service.Profile, error) {
	return m.profile(m.Called(ctx, userID, p))
}

func (m *MockProfileService) UpdateNotifications(ctx context.Context, userID string, n model.NotificationSettings) (*service.Profile, error) {
	return m.profile(m.Called(ctx, userID, n))
}

func (m *MockProfileService) ChangePassword(ctx context.Context, userID string, in service.PasswordChange) error {
	return m.Called(ctx, userID, in).Error(0)
}

func (m *MockProfileService) UploadAvatar(ctx context.Context, userID string, r io.Reader, contentType string, size int64) (*service.Profile, error) {
	return m.profile(m.Called(ctx, userID, r, contentType, size))
}
