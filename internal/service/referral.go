package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

const activeReferralWindow = 30 * 24 * time.Hour

// ReferralLevel is a tier of the referral program. MaxReferrals is 0 for the open-ended top tier.
type ReferralLevel struct {
	Name              string          `json:"name"`
	MinReferrals      int             `json:"min_referrals"`
	MaxReferrals      int             `json:"max_referrals,omitempty"`
	RewardPerReferral decimal.Decimal `json:"reward_per_referral"`
}

var referralLevels = []ReferralLevel{
	{Name: "Principiante", MinReferrals: 0, MaxReferrals: 4, RewardPerReferral: decimal.NewFromInt(50)},
	{Name: "Bronce", MinReferrals: 5, MaxReferrals: 19, RewardPerReferral: decimal.NewFromInt(75)},
	{Name: "Plata", MinReferrals: 20, MaxReferrals: 49, RewardPerReferral: decimal.NewFromInt(100)},
	{Name: "Oro", MinReferrals: 50, MaxReferrals: 99, RewardPerReferral: decimal.NewFromInt(150)},
	{Name: "Diamante", MinReferrals: 100, RewardPerReferral: decimal.NewFromInt(200)},
}

// LevelFor returns the tier reached with n referrals and the next one, if any.
func LevelFor(n int) (ReferralLevel, *ReferralLevel) {
	idx := 0
	for i, l := range referralLevels {
		if n >= l.MinReferrals {
			idx = i
		}
	}
	if idx+1 < len(referralLevels) {
		next := referralLevels[idx+1]
		return referralLevels[idx], &next
	}
	return referralLevels[idx], nil
}

// ReferralSummary backs the referral page header.
type ReferralSummary struct {
	Code            string          `json:"code"`
	Link            string          `json:"link"`
	TotalReferrals  int             `json:"total_referrals"`
	ActiveReferrals int             `json:"active_referrals"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	Level           ReferralLevel   `json:"level"`
	NextLevel       *ReferralLevel  `json:"next_level,omitempty"`
	ToNextLevel     int             `json:"referrals_to_next_level"`
}

// ReferralService defines the referral program use cases.
type ReferralService interface {
	Summary(ctx context.Context, userID string) (*ReferralSummary, error)
	List(ctx context.Context, userID string) ([]model.Referral, error)
	Levels() []ReferralLevel
}

type referralService struct {
	users     repository.UserRepository
	referrals repository.ReferralRepository
	publicURL string
	now       func() time.Time
}

// NewReferralService constructs a new ReferralService. publicURL prefixes share links.
func NewReferralService(users repository.UserRepository, referrals repository.ReferralRepository, publicURL string) ReferralService {
	return &referralService{
		users:     users,
		referrals: referrals,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *referralService) Levels() []ReferralLevel {
	out := make([]ReferralLevel, len(referralLevels))
	copy(out, referralLevels)
	return out
}

func (s *referralService) Summary(ctx context.Context, userID string) (*ReferralSummary, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound("find user", err)
	}
	refs, err := s.referrals.ListByReferrer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	earned, err := s.referrals.SumBonus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum referral bonus: %w", err)
	}

	cutoff := s.now().Add(-activeReferralWindow)
	active := 0
	for _, r := range refs {
		if !r.CreatedAt.Before(cutoff) {
			active++
		}
	}

	level, next := LevelFor(len(refs))
	sum := &ReferralSummary{
		Code:            u.ReferralCode,
		Link:            s.publicURL + "/register?ref=" + url.QueryEscape(u.ReferralCode),
		TotalReferrals:  len(refs),
		ActiveReferrals: active,
		TotalEarnings:   earned,
		Level:           level,
		NextLevel:       next,
	}
	if next != nil {
		sum.ToNextLevel = next.MinReferrals - len(refs)
	}
	return sum, nil
}

func (s *referralService) List(ctx context.Context, userID string) ([]model.Referral, error) {
	refs, err := s.referrals.ListByReferrer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	return refs, nil
}
