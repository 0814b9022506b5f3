package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger row.
type TransactionType string

const (
	TxDeposit          TransactionType = "deposit"
	TxWithdrawal       TransactionType = "withdrawal"
	TxInvestment       TransactionType = "investment"
	TxEarning          TransactionType = "earning"
	TxInvestmentReturn TransactionType = "investment_return"
	TxReferralBonus    TransactionType = "referral_bonus"
	TxAdjustment       TransactionType = "adjustment"
)

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxInvestment, TxEarning, TxInvestmentReturn, TxReferralBonus, TxAdjustment:
		return true
	}
	return false
}

// TransactionStatus is the processing state of a transaction.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	return s == TxPending || s == TxCompleted || s == TxFailed
}

// Transaction is a money movement shown in the history page.
type Transaction struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TransactionFilter narrows history listings. Empty fields match everything.
type TransactionFilter struct {
	UserID string
	Type   TransactionType
	Status TransactionStatus
}

// TransactionStats are the completed totals per type.
type TransactionStats struct {
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	TotalInvested    decimal.Decimal `json:"total_invested"`
}
