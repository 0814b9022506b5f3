package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"cryptoinvest/internal/model"
)

// ReferralRepository persists who invited whom.
type ReferralRepository interface {
	Create(ctx context.Context, r *model.Referral) (*model.Referral, error)
	// ListByReferrer returns referred accounts with their name and email, newest first.
	ListByReferrer(ctx context.Context, referrerID string) ([]model.Referral, error)
	SumBonus(ctx context.Context, referrerID string) (decimal.Decimal, error)
}
