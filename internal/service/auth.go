package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cryptoinvest/internal/metrics"
	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

const (
	referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referralCodeLength   = 8
	referralCodeAttempts = 5
)

var tracer = otel.Tracer("cryptoinvest/internal/service")

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID string, role model.Role) (string, time.Time, error)
}

// RegisterInput is the signup form.
type RegisterInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	ReferralCode string `json:"referral_code"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// AuthSettings are the amounts granted at signup.
type AuthSettings struct {
	DemoBalance   decimal.Decimal
	SignupBonus   decimal.Decimal
	ReferrerBonus decimal.Decimal
}

// AuthService defines account creation and login.
type AuthService interface {
	// Register creates the account, its balances and, with a valid referral code, pays both bonuses.
	// Unknown referral codes are ignored.
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	// EnsureAdmin creates or promotes the bootstrap administrator.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	users     repository.UserRepository
	balances  repository.BalanceRepository
	referrals repository.ReferralRepository
	txs       repository.TransactionRepository
	tokens    TokenIssuer
	settings  AuthSettings
	metrics   *metrics.Metrics
	log       *zap.Logger

	now        func() time.Time
	bcryptCost int
	newCode    func() string
}

// NewAuthService constructs a new AuthService.
func NewAuthService(
	users repository.UserRepository,
	balances repository.BalanceRepository,
	referrals repository.ReferralRepository,
	txs repository.TransactionRepository,
	tokens TokenIssuer,
	settings AuthSettings,
	m *metrics.Metrics,
	log *zap.Logger,
) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		users:      users,
		balances:   balances,
		referrals:  referrals,
		txs:        txs,
		tokens:     tokens,
		settings:   settings,
		metrics:    m,
		log:        log.Named("auth"),
		now:        func() time.Time { return time.Now().UTC() },
		bcryptCost: bcrypt.DefaultCost,
		newCode:    randomReferralCode,
	}
}

func randomReferralCode() string {
	b := make([]byte, referralCodeLength)
	for i := range b {
		b[i] = referralCodeAlphabet[rand.IntN(len(referralCodeAlphabet))]
	}
	return string(b)
}

func normalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return "", fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	return e, nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Register")
	defer span.End()

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	referrer, err := s.resolveReferrer(ctx, in.ReferralCode)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Bool("referred", referrer != nil))

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := &model.User{
		Email:         email,
		PasswordHash:  string(hash),
		Name:          strings.TrimSpace(in.Name),
		Role:          model.RoleUser,
		Status:        model.UserActive,
		Preferences:   model.DefaultPreferences(),
		Notifications: model.DefaultNotifications(),
		CreatedAt:     now,
	}
	if referrer != nil {
		u.ReferredBy = &referrer.ID
	}

	created, err := s.createWithCode(ctx, u)
	if err != nil {
		return nil, err
	}

	opening := decimal.Zero
	if referrer != nil {
		opening = s.settings.SignupBonus
	}
	if err := s.openBalances(ctx, created.ID, opening); err != nil {
		return nil, err
	}

	if referrer != nil {
		s.payReferral(ctx, referrer, created, now)
	}
	s.metrics.Signup(referrer != nil)

	s.log.Info("user registered",
		zap.String("event", "user_registered"),
		zap.String("user_id", created.ID),
		zap.Bool("referred", referrer != nil),
	)
	return s.issue(created)
}

// openBalances creates the balance row for a new user and removes the user again
// when that fails, so the email stays free for a retry.
func (s *authService) openBalances(ctx context.Context, userID string, opening decimal.Decimal) error {
	if _, err := s.balances.Create(ctx, userID, opening, s.settings.DemoBalance); err != nil {
		if delErr := s.users.Delete(ctx, userID); delErr != nil {
			s.log.Error("orphaned user without balance",
				zap.String("event", "register_cleanup_failed"),
				zap.String("user_id", userID),
				zap.Error(delErr),
			)
			return errors.Join(fmt.Errorf("open balances: %w", err), fmt.Errorf("rollback user failed: %w", delErr))
		}
		return fmt.Errorf("open balances: %w", err)
	}
	return nil
}

// resolveReferrer returns nil for an empty or unknown code.
func (s *authService) resolveReferrer(ctx context.Context, code string) (*model.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	ref, err := s.users.FindByReferralCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Info("unknown referral code ignored", zap.String("event", "referral_code_unknown"), zap.String("code", code))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup referral code: %w", err)
	}
	return ref, nil
}

func (s *authService) createWithCode(ctx context.Context, u *model.User) (*model.User, error) {
	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		u.ID = uuid.NewString()
		u.ReferralCode = s.newCode()
		created, err := s.users.Create(ctx, u)
		switch {
		case err == nil:
			return created, nil
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrDuplicateReferralCode):
			continue
		default:
			return nil, fmt.Errorf("create user: %w", err)
		}
	}
	return nil, fmt.Errorf("create user: no free referral code after %d attempts", referralCodeAttempts)
}

// payReferral credits the referrer and records both bonuses. Failures are logged,
// the signup itself has already succeeded.
func (s *authService) payReferral(ctx context.Context, referrer, referred *model.User, now time.Time) {
	log := s.log.With(zap.String("referrer_id", referrer.ID), zap.String("referred_id", referred.ID))

	if _, err := s.balances.Credit(ctx, referrer.ID, s.settings.ReferrerBonus); err != nil {
		log.Error("referrer bonus credit failed", zap.String("event", "referral_bonus_failed"), zap.Error(err))
		return
	}
	if _, err := s.referrals.Create(ctx, &model.Referral{
		ID:         uuid.NewString(),
		ReferrerID: referrer.ID,
		ReferredID: referred.ID,
		Bonus:      s.settings.ReferrerBonus,
		CreatedAt:  now,
	}); err != nil {
		log.Error("referral record failed", zap.String("event", "referral_record_failed"), zap.Error(err))
	}

	for _, tx := range []*model.Transaction{
		newTransaction(referrer.ID, model.TxReferralBonus, s.settings.ReferrerBonus, "USD",
			"Bono por referido: "+referred.Email, model.TxCompleted, now),
		newTransaction(referred.ID, model.TxReferralBonus, s.settings.SignupBonus, "USD",
			"Bono de bienvenida por código de referido", model.TxCompleted, now),
	} {
		if _, err := s.txs.Create(ctx, tx); err != nil {
			log.Error("referral transaction failed", zap.String("event", "referral_tx_failed"), zap.Error(err))
		}
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Status == model.UserBlocked {
		return nil, ErrUserBlocked
	}
	return s.issue(u)
}

func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound("find user", err)
	}
	return u, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if u.Role == model.RoleAdmin {
			return nil
		}
		if err := s.users.UpdateRole(ctx, u.ID, model.RoleAdmin); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		s.log.Info("admin promoted", zap.String("event", "admin_promoted"), zap.String("user_id", u.ID))
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	created, err := s.createWithCode(ctx, &model.User{
		Email:         email,
		PasswordHash:  string(hash),
		Name:          "Administrador",
		Role:          model.RoleAdmin,
		Status:        model.UserActive,
		Preferences:   model.DefaultPreferences(),
		Notifications: model.DefaultNotifications(),
		CreatedAt:     s.now(),
	})
	if err != nil {
		return err
	}
	if err := s.openBalances(ctx, created.ID, decimal.Zero); err != nil {
		return err
	}
	s.log.Info("admin created", zap.String("event", "admin_created"), zap.String("user_id", created.ID))
	return nil
}

func (s *authService) issue(u *model.User) (*AuthResult, error) {
	tok, exp, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: u, Token: tok, ExpiresAt: exp}, nil
}
