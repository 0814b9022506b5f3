package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

// ReferralPostgres is a PostgreSQL implementation of repository.ReferralRepository.
type ReferralPostgres struct {
	db *sql.DB
}

// NewReferralPostgres creates a new ReferralPostgres repository.
func NewReferralPostgres(db *sql.DB) *ReferralPostgres {
	return &ReferralPostgres{db: db}
}

var _ repository.ReferralRepository = (*ReferralPostgres)(nil)

// Create records that ReferredID signed up with ReferrerID's code.
func (r *ReferralPostgres) Create(ctx context.Context, ref *model.Referral) (*model.Referral, error) {
	const q = `
		INSERT INTO referrals (id, referrer_id, referred_id, bonus, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, referrer_id, referred_id, bonus, created_at
	`
	var out model.Referral
	if err := r.db.QueryRowContext(ctx, q, ref.ID, ref.ReferrerID, ref.ReferredID, ref.Bonus, ref.CreatedAt).Scan(
		&out.ID,
		&out.ReferrerID,
		&out.ReferredID,
		&out.Bonus,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	out.ReferredName = ref.ReferredName
	out.ReferredEmail = ref.ReferredEmail
	return &out, nil
}

func (r *ReferralPostgres) ListByReferrer(ctx context.Context, referrerID string) ([]model.Referral, error) {
	const q = `
		SELECT r.id, r.referrer_id, r.referred_id, u.name, u.email, r.bonus, r.created_at
		FROM referrals r
		JOIN users u ON u.id = r.referred_id
		WHERE r.referrer_id = $1
		ORDER BY r.created_at DESC, r.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Referral, 0)
	for rows.Next() {
		var ref model.Referral
		if err := rows.Scan(
			&ref.ID,
			&ref.ReferrerID,
			&ref.ReferredID,
			&ref.ReferredName,
			&ref.ReferredEmail,
			&ref.Bonus,
			&ref.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SumBonus is the total paid to a referrer for signups.
func (r *ReferralPostgres) SumBonus(ctx context.Context, referrerID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(bonus), 0) FROM referrals WHERE referrer_id = $1`, referrerID).Scan(&sum)
	return sum, err
}
