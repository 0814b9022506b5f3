package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Referral links an inviting user to the account that signed up with their code.
type Referral struct {
	ID            string          `json:"id"`
	ReferrerID    string          `json:"referrer_id"`
	ReferredID    string          `json:"referred_id"`
	ReferredName  string          `json:"referred_name"`
	ReferredEmail string          `json:"referred_email"`
	Bonus         decimal.Decimal `json:"bonus"`
	CreatedAt     time.Time       `json:"created_at"`
}
