package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, email, password_hash, name, phone, country, city, avatar_key, role, status,
		referral_code, referred_by, preferences, notifications, created_at, updated_at`

func scanUser(s scanner, extra ...any) (*model.User, error) {
	var (
		u             model.User
		preferences   []byte
		notifications []byte
	)
	dest := []any{
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Phone,
		&u.Country,
		&u.City,
		&u.AvatarKey,
		&u.Role,
		&u.Status,
		&u.ReferralCode,
		&u.ReferredBy,
		&preferences,
		&notifications,
		&u.CreatedAt,
		&u.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	u.Preferences = model.DefaultPreferences()
	if len(preferences) > 0 {
		if err := json.Unmarshal(preferences, &u.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
	}
	u.Notifications = model.DefaultNotifications()
	if len(notifications) > 0 {
		if err := json.Unmarshal(notifications, &u.Notifications); err != nil {
			return nil, fmt.Errorf("decode notifications: %w", err)
		}
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	prefs, err := json.Marshal(u.Preferences)
	if err != nil {
		return nil, err
	}
	notif, err := json.Marshal(u.Notifications)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO users (id, email, password_hash, name, phone, country, city, role, status,
			referral_code, referred_by, preferences, notifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.Phone,
		u.Country,
		u.City,
		u.Role,
		u.Status,
		u.ReferralCode,
		u.ReferredBy,
		string(prefs),
		string(notif),
		u.CreatedAt,
	)
	out, err := scanUser(row)
	if err != nil {
		switch uniqueConstraint(err) {
		case "users_email_key":
			return nil, repository.ErrDuplicateEmail
		case "users_referral_code_key":
			return nil, repository.ErrDuplicateReferralCode
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail fetches a user by login email. Emails are stored lower-cased.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByReferralCode fetches the owner of an invitation code.
func (r *UserPostgres) FindByReferralCode(ctx context.Context, code string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code)
}

func (r *UserPostgres) findOne(ctx context.Context, q string, arg any) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, q, arg))
}

// List returns accounts joined with their balances using LIMIT/OFFSET pagination.
func (r *UserPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Account], error) {
	const qCount = `SELECT COUNT(*) FROM users`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	limit, offset := clampPage(pq.Limit, pq.Offset)
	q := `
		SELECT ` + prefixed("u", userColumns) + `, COALESCE(b.balance, 0), COALESCE(b.demo_balance, 0)
		FROM users u
		LEFT JOIN balances b ON b.user_id = u.id
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Account, 0)
	for rows.Next() {
		var a model.Account
		u, err := scanUser(rows, &a.Balance, &a.DemoBalance)
		if err != nil {
			return nil, err
		}
		a.User = *u
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Account]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateProfile overwrites the personal fields.
func (r *UserPostgres) UpdateProfile(ctx context.Context, id string, p model.ProfileUpdate) error {
	const q = `UPDATE users SET name = $2, phone = $3, country = $4, city = $5, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, q, id, p.Name, p.Phone, p.Country, p.City)
}

func (r *UserPostgres) UpdatePreferences(ctx context.Context, id string, p model.Preferences) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	const q = `UPDATE users SET preferences = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, q, id, string(b))
}

func (r *UserPostgres) UpdateNotifications(ctx context.Context, id string, n model.NotificationSettings) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	const q = `UPDATE users SET notifications = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, q, id, string(b))
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, id string, hash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, q, id, hash)
}

func (r *UserPostgres) UpdateStatus(ctx context.Context, id string, status model.UserStatus) error {
	const q = `UPDATE users SET status = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, q, id, status)
}

func (r *UserPostgres) UpdateRole(ctx context.Context, id string, role model.Role) error {
	const q = `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, q, id, role)
}

func (r *UserPostgres) UpdateAvatar(ctx context.Context, id string, key string) error {
	const q = `UPDATE users SET avatar_key = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, q, id, key)
}

func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

// execOne runs an update and reports sql.ErrNoRows when no row matched.
func (r *UserPostgres) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *UserPostgres) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountSince counts accounts registered at or after since.
func (r *UserPostgres) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}
