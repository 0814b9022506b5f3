package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
	"cryptoinvest/internal/storage"
)

const avatarURLExpiry = 15 * time.Minute

// Profile is the account as shown on the profile page.
type Profile struct {
	model.User
	AvatarURL string `json:"avatar_url,omitempty"`
}

// PasswordChange is the security tab form.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ProfileService defines the profile page use cases.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	UpdateInfo(ctx context.Context, userID string, p model.ProfileUpdate) (*Profile, error)
	UpdatePreferences(ctx context.Context, userID string, p model.Preferences) (*Profile, error)
	UpdateNotifications(ctx context.Context, userID string, n model.NotificationSettings) (*Profile, error)
	ChangePassword(ctx context.Context, userID string, in PasswordChange) error
	// UploadAvatar stores the image, then points the profile at it. The stored object is
	// removed again if the profile update fails.
	UploadAvatar(ctx context.Context, userID string, r io.Reader, contentType string, size int64) (*Profile, error)
}

type profileService struct {
	users      repository.UserRepository
	store      storage.Storage
	log        *zap.Logger
	bcryptCost int
}

// NewProfileService constructs a new ProfileService. store may be nil when avatars are disabled.
func NewProfileService(users repository.UserRepository, store storage.Storage, log *zap.Logger) ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &profileService{users: users, store: store, log: log.Named("profile"), bcryptCost: bcrypt.DefaultCost}
}

func (s *profileService) Get(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound("find user", err)
	}
	p := &Profile{User: *u}
	if u.AvatarKey != "" && s.store != nil {
		url, err := s.store.PresignGet(ctx, u.AvatarKey, avatarURLExpiry)
		if err != nil {
			s.log.Warn("presign avatar failed", zap.String("user_id", userID), zap.Error(err))
		} else {
			p.AvatarURL = url
		}
	}
	return p, nil
}

func (s *profileService) UpdateInfo(ctx context.Context, userID string, p model.ProfileUpdate) (*Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Country = strings.TrimSpace(p.Country)
	p.City = strings.TrimSpace(p.City)
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.users.UpdateProfile(ctx, userID, p); err != nil {
		return nil, notFound("update profile", err)
	}
	return s.Get(ctx, userID)
}

func (s *profileService) UpdatePreferences(ctx context.Context, userID string, p model.Preferences) (*Profile, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: unsupported preference value", ErrInvalidInput)
	}
	if err := s.users.UpdatePreferences(ctx, userID, p); err != nil {
		return nil, notFound("update preferences", err)
	}
	return s.Get(ctx, userID)
}

func (s *profileService) UpdateNotifications(ctx context.Context, userID string, n model.NotificationSettings) (*Profile, error) {
	if err := s.users.UpdateNotifications(ctx, userID, n); err != nil {
		return nil, notFound("update notifications", err)
	}
	return s.Get(ctx, userID)
}

func (s *profileService) ChangePassword(ctx context.Context, userID string, in PasswordChange) error {
	if len(in.NewPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	if in.NewPassword != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return notFound("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return notFound("update password", err)
	}
	s.log.Info("password changed", zap.String("event", "password_changed"), zap.String("user_id", userID))
	return nil
}

func (s *profileService) UploadAvatar(ctx context.Context, userID string, r io.Reader, contentType string, size int64) (*Profile, error) {
	if s.store == nil {
		return nil, fmt.Errorf("avatar storage is not configured")
	}
	if r == nil {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if size > storage.MaxAvatarSize {
		return nil, fmt.Errorf("%w: avatar exceeds %d bytes", ErrInvalidInput, storage.MaxAvatarSize)
	}
	ext, err := storage.ImageExtension(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound("find user", err)
	}

	key := storage.AvatarKey(userID, ext)
	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata:    map[string]string{"user-id": userID},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	if err := s.users.UpdateAvatar(ctx, userID, key); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if u.AvatarKey != "" {
		if err := s.store.Delete(ctx, u.AvatarKey); err != nil {
			s.log.Warn("previous avatar not removed", zap.String("key", u.AvatarKey), zap.Error(err))
		}
	}
	return s.Get(ctx, userID)
}
