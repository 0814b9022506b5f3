package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

var depositCurrencies = map[string]bool{"USD": true, "USDT": true, "BTC": true, "ETH": true}

// toUSD converts amount of currency with the simulated price. USD and USDT are 1:1.
func toUSD(feed PriceFeed, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	switch currency {
	case "USD", "USDT":
		return amount, nil
	}
	price, ok := feed.Price(currency)
	if !ok || !price.IsPositive() {
		return decimal.Zero, ErrPriceUnavailable
	}
	return amount.Mul(price).Round(2), nil
}

// WalletService defines balance and money movement use cases of a user.
type WalletService interface {
	Balance(ctx context.Context, userID string) (*model.Balance, error)
	// RequestDeposit records a pending deposit valued in USD; an administrator credits it on approval.
	RequestDeposit(ctx context.Context, userID string, amount decimal.Decimal, currency string) (*model.Transaction, error)
	// RequestWithdrawal debits immediately and records a pending withdrawal.
	RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, address string) (*model.Transaction, error)
	Transactions(ctx context.Context, userID string, f model.TransactionFilter, limit, offset int) (*ListResult[model.Transaction], error)
	Stats(ctx context.Context, userID string) (*model.TransactionStats, error)
}

type walletService struct {
	balances repository.BalanceRepository
	txs      repository.TransactionRepository
	feed     PriceFeed
	log      *zap.Logger
	now      func() time.Time
}

// NewWalletService constructs a new WalletService.
func NewWalletService(balances repository.BalanceRepository, txs repository.TransactionRepository, feed PriceFeed, log *zap.Logger) WalletService {
	if log == nil {
		log = zap.NewNop()
	}
	return &walletService{
		balances: balances,
		txs:      txs,
		feed:     feed,
		log:      log.Named("wallet"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *walletService) Balance(ctx context.Context, userID string) (*model.Balance, error) {
	b, err := s.balances.Get(ctx, userID)
	if err != nil {
		return nil, notFound("get balance", err)
	}
	return b, nil
}

func (s *walletService) RequestDeposit(ctx context.Context, userID string, amount decimal.Decimal, currency string) (*model.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	if !depositCurrencies[currency] {
		return nil, ErrUnsupportedCurrency
	}
	usd, err := toUSD(s.feed, amount, currency)
	if err != nil {
		return nil, err
	}

	desc := "Depósito"
	if currency != "USD" {
		desc = fmt.Sprintf("Depósito de %s %s", amount.String(), currency)
	}
	tx, err := s.txs.Create(ctx, newTransaction(userID, model.TxDeposit, usd, "USD", desc, model.TxPending, s.now()))
	if err != nil {
		return nil, fmt.Errorf("record deposit: %w", err)
	}
	s.log.Info("deposit requested", zap.String("event", "deposit_requested"), zap.String("user_id", userID), zap.String("tx_id", tx.ID))
	return tx, nil
}

func (s *walletService) RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, address string) (*model.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.balances.Debit(ctx, userID, amount); err != nil {
		return nil, funds("debit balance", err)
	}

	desc := "Retiro"
	if a := strings.TrimSpace(address); a != "" {
		desc = "Retiro a " + a
	}
	tx, err := s.txs.Create(ctx, newTransaction(userID, model.TxWithdrawal, amount, "USD", desc, model.TxPending, s.now()))
	if err != nil {
		if _, credErr := s.balances.Credit(ctx, userID, amount); credErr != nil {
			return nil, errors.Join(fmt.Errorf("record withdrawal: %w", err), fmt.Errorf("rollback credit failed: %w", credErr))
		}
		return nil, fmt.Errorf("record withdrawal: %w", err)
	}
	s.log.Info("withdrawal requested", zap.String("event", "withdrawal_requested"), zap.String("user_id", userID), zap.String("tx_id", tx.ID))
	return tx, nil
}

func validateFilter(f model.TransactionFilter) error {
	if f.Type != "" && !f.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, f.Type)
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: unknown transaction status %q", ErrInvalidInput, f.Status)
	}
	return nil
}

func (s *walletService) Transactions(ctx context.Context, userID string, f model.TransactionFilter, limit, offset int) (*ListResult[model.Transaction], error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	f.UserID = userID
	res, err := s.txs.List(ctx, f, pageQuery(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return &ListResult[model.Transaction]{Items: res.Items, Total: res.Total}, nil
}

func (s *walletService) Stats(ctx context.Context, userID string) (*model.TransactionStats, error) {
	st, err := s.txs.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}
	return st, nil
}
