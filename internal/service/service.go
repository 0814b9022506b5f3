// Package service implements the use cases behind the HTTP API. Services depend on
// repository interfaces and translate storage errors into the sentinels below.
package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserBlocked         = errors.New("account is blocked")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch    = errors.New("password confirmation does not match")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrPlanNotFound        = errors.New("plan not found")
	ErrAmountOutOfRange    = errors.New("amount outside plan limits")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrUnknownPair         = errors.New("unknown trading pair")
	ErrInvalidSide         = errors.New("side must be buy or sell")
	ErrInvalidDuration     = errors.New("unsupported trade duration")
	ErrTradeNotOpen        = errors.New("trade is not open")
	ErrPriceUnavailable    = errors.New("price unavailable")
	ErrNotPending          = errors.New("transaction is not pending")
	ErrNotReviewable       = errors.New("only deposits and withdrawals can be reviewed")
)

const minPasswordLength = 6

// PriceFeed supplies current simulated prices.
type PriceFeed interface {
	Price(symbol string) (decimal.Decimal, bool)
	BaseOf(pair string) (string, bool)
}

// ListResult is the service-level DTO for paginated listings.
type ListResult[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}

func pageQuery(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

// notFound maps sql.ErrNoRows to ErrNotFound and wraps everything else with op.
func notFound(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// funds maps repository.ErrInsufficientFunds to ErrInsufficientFunds.
func funds(op string, err error) error {
	if errors.Is(err, repository.ErrInsufficientFunds) {
		return ErrInsufficientFunds
	}
	return notFound(op, err)
}

func newTransaction(userID string, typ model.TransactionType, amount decimal.Decimal, currency, desc string, status model.TransactionStatus, at time.Time) *model.Transaction {
	if currency == "" {
		currency = "USD"
	}
	return &model.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        typ,
		Amount:      amount,
		Currency:    currency,
		Description: desc,
		Status:      status,
		CreatedAt:   at,
	}
}
