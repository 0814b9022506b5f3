package model

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Role of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserStatus gates login and money movement.
type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserBlocked UserStatus = "blocked"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserBlocked
}

// Preferences are display settings chosen on the profile page.
type Preferences struct {
	Timezone string `json:"timezone"`
	Language string `json:"language"`
	Currency string `json:"currency"`
	Theme    string `json:"theme"`
}

// DefaultPreferences returns the settings new accounts start with.
func DefaultPreferences() Preferences {
	return Preferences{Timezone: "UTC-5", Language: "es", Currency: "USD", Theme: "dark"}
}

var (
	timezonePattern = regexp.MustCompile(`^UTC([+-](1[0-4]|[1-9]))?$`)
	languages       = map[string]bool{"es": true, "en": true, "pt": true, "fr": true}
	currencies      = map[string]bool{"USD": true, "EUR": true, "GBP": true, "JPY": true, "BTC": true, "ETH": true}
	themes          = map[string]bool{"dark": true, "light": true, "auto": true}
)

// Valid reports whether every field holds one of the selectable values.
func (p Preferences) Valid() bool {
	return timezonePattern.MatchString(p.Timezone) && languages[p.Language] && currencies[p.Currency] && themes[p.Theme]
}

// NotificationSettings toggles outbound channels.
type NotificationSettings struct {
	Email     bool `json:"email"`
	SMS       bool `json:"sms"`
	Push      bool `json:"push"`
	Marketing bool `json:"marketing"`
}

// DefaultNotifications returns the channels new accounts start with.
func DefaultNotifications() NotificationSettings {
	return NotificationSettings{Email: true, Push: true}
}

// User is an account holder. PasswordHash never leaves the service layer.
type User struct {
	ID            string               `json:"id"`
	Email         string               `json:"email"`
	PasswordHash  string               `json:"-"`
	Name          string               `json:"name"`
	Phone         string               `json:"phone"`
	Country       string               `json:"country"`
	City          string               `json:"city"`
	AvatarKey     string               `json:"avatar_key,omitempty"`
	Role          Role                 `json:"role"`
	Status        UserStatus           `json:"status"`
	ReferralCode  string               `json:"referral_code"`
	ReferredBy    *string              `json:"referred_by,omitempty"`
	Preferences   Preferences          `json:"preferences"`
	Notifications NotificationSettings `json:"notifications"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// ProfileUpdate carries the editable personal fields.
type ProfileUpdate struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// Account is a user joined with its balances, used by admin listings.
type Account struct {
	User
	Balance     decimal.Decimal `json:"balance"`
	DemoBalance decimal.Decimal `json:"demo_balance"`
}
