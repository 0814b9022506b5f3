package repository

import (
	"context"
	"time"

	"cryptoinvest/internal/model"
)

// UserRepository persists accounts and their profile settings.
type UserRepository interface {
	// Create inserts a user. Unique violations map to ErrDuplicateEmail or ErrDuplicateReferralCode.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByReferralCode(ctx context.Context, code string) (*model.User, error)

	// List returns accounts joined with balances, newest first.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Account], error)

	UpdateProfile(ctx context.Context, id string, p model.ProfileUpdate) error
	UpdatePreferences(ctx context.Context, id string, p model.Preferences) error
	UpdateNotifications(ctx context.Context, id string, n model.NotificationSettings) error
	UpdatePassword(ctx context.Context, id string, hash string) error
	UpdateStatus(ctx context.Context, id string, status model.UserStatus) error
	UpdateRole(ctx context.Context, id string, role model.Role) error
	UpdateAvatar(ctx context.Context, id string, key string) error

	// Delete removes a user that never finished registration.
	Delete(ctx context.Context, id string) error

	Count(ctx context.Context) (int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}
