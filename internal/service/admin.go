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

const activeUserWindow = 30 * 24 * time.Hour

// DashboardStats are the admin dashboard counters.
type DashboardStats struct {
	TotalUsers        int             `json:"total_users"`
	ActiveUsers       int             `json:"active_users"`
	TotalInvested     decimal.Decimal `json:"total_invested"`
	TotalTransactions int             `json:"total_transactions"`
}

// AdminService defines back-office use cases.
type AdminService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	Users(ctx context.Context, limit, offset int) (*ListResult[model.Account], error)
	SetStatus(ctx context.Context, userID string, status model.UserStatus) error
	// SetBalance overwrites the real balance and records the difference as an adjustment.
	SetBalance(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error)
	// Deposit credits a user directly with a completed deposit.
	Deposit(ctx context.Context, userID string, amount decimal.Decimal, note string) (*model.Transaction, error)
	Investments(ctx context.Context, limit, offset int) (*ListResult[model.Investment], error)
	Transactions(ctx context.Context, f model.TransactionFilter, limit, offset int) (*ListResult[model.Transaction], error)
	// Approve completes a pending deposit (crediting it) or withdrawal.
	Approve(ctx context.Context, txID string) (*model.Transaction, error)
	// Reject fails a pending deposit, or a pending withdrawal refunding its amount.
	Reject(ctx context.Context, txID string) (*model.Transaction, error)
}

type adminService struct {
	users       repository.UserRepository
	balances    repository.BalanceRepository
	investments repository.InvestmentRepository
	txs         repository.TransactionRepository
	log         *zap.Logger
	now         func() time.Time
}

// NewAdminService constructs a new AdminService.
func NewAdminService(
	users repository.UserRepository,
	balances repository.BalanceRepository,
	investments repository.InvestmentRepository,
	txs repository.TransactionRepository,
	log *zap.Logger,
) AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &adminService{
		users:       users,
		balances:    balances,
		investments: investments,
		txs:         txs,
		log:         log.Named("admin"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *adminService) Stats(ctx context.Context) (*DashboardStats, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	active, err := s.users.CountSince(ctx, s.now().Add(-activeUserWindow))
	if err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	invested, err := s.investments.SumAmount(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum investments: %w", err)
	}
	txCount, err := s.txs.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}
	return &DashboardStats{
		TotalUsers:        total,
		ActiveUsers:       active,
		TotalInvested:     invested,
		TotalTransactions: txCount,
	}, nil
}

func (s *adminService) Users(ctx context.Context, limit, offset int) (*ListResult[model.Account], error) {
	res, err := s.users.List(ctx, pageQuery(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ListResult[model.Account]{Items: res.Items, Total: res.Total}, nil
}

func (s *adminService) SetStatus(ctx context.Context, userID string, status model.UserStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		return notFound("update status", err)
	}
	s.log.Info("user status changed", zap.String("event", "user_status_changed"),
		zap.String("user_id", userID), zap.String("status", string(status)))
	return nil
}

func (s *adminService) SetBalance(ctx context.Context, userID string, amount decimal.Decimal) (*model.Balance, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	before, err := s.balances.Get(ctx, userID)
	if err != nil {
		return nil, notFound("get balance", err)
	}
	after, err := s.balances.Set(ctx, userID, amount)
	if err != nil {
		return nil, notFound("set balance", err)
	}

	if delta := amount.Sub(before.Balance); !delta.IsZero() {
		tx := newTransaction(userID, model.TxAdjustment, delta, "USD", "Ajuste de saldo por administrador", model.TxCompleted, s.now())
		if _, err := s.txs.Create(ctx, tx); err != nil {
			s.log.Error("adjustment transaction not recorded", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return after, nil
}

func (s *adminService) Deposit(ctx context.Context, userID string, amount decimal.Decimal, note string) (*model.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.balances.Credit(ctx, userID, amount); err != nil {
		return nil, notFound("credit balance", err)
	}

	desc := strings.TrimSpace(note)
	if desc == "" {
		desc = "Depósito del administrador"
	}
	tx, err := s.txs.Create(ctx, newTransaction(userID, model.TxDeposit, amount, "USD", desc, model.TxCompleted, s.now()))
	if err != nil {
		if _, debErr := s.balances.Debit(ctx, userID, amount); debErr != nil {
			return nil, errors.Join(fmt.Errorf("record deposit: %w", err), fmt.Errorf("rollback debit failed: %w", debErr))
		}
		return nil, fmt.Errorf("record deposit: %w", err)
	}
	return tx, nil
}

func (s *adminService) Investments(ctx context.Context, limit, offset int) (*ListResult[model.Investment], error) {
	res, err := s.investments.List(ctx, pageQuery(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return &ListResult[model.Investment]{Items: res.Items, Total: res.Total}, nil
}

func (s *adminService) Transactions(ctx context.Context, f model.TransactionFilter, limit, offset int) (*ListResult[model.Transaction], error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	res, err := s.txs.List(ctx, f, pageQuery(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return &ListResult[model.Transaction]{Items: res.Items, Total: res.Total}, nil
}

// pending loads a reviewable transaction.
func (s *adminService) pending(ctx context.Context, txID string) (*model.Transaction, error) {
	tx, err := s.txs.FindByID(ctx, txID)
	if err != nil {
		return nil, notFound("find transaction", err)
	}
	if tx.Type != model.TxDeposit && tx.Type != model.TxWithdrawal {
		return nil, ErrNotReviewable
	}
	if tx.Status != model.TxPending {
		return nil, ErrNotPending
	}
	return tx, nil
}

func (s *adminService) transition(ctx context.Context, tx *model.Transaction, to model.TransactionStatus) error {
	err := s.txs.UpdateStatus(ctx, tx.ID, model.TxPending, to)
	if errors.Is(err, repository.ErrStale) {
		return ErrNotPending
	}
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	tx.Status = to
	tx.UpdatedAt = s.now()
	return nil
}

// reopen moves a reviewed transaction back to pending after its balance change failed,
// so the review can be retried.
func (s *adminService) reopen(ctx context.Context, tx *model.Transaction, cause error) error {
	reviewed := tx.Status
	if err := s.txs.UpdateStatus(ctx, tx.ID, reviewed, model.TxPending); err != nil {
		s.log.Error("transaction left reviewed without balance change",
			zap.String("event", "tx_reopen_failed"),
			zap.String("tx_id", tx.ID),
			zap.String("status", string(reviewed)),
			zap.String("amount", tx.Amount.String()),
			zap.Error(err),
		)
		return errors.Join(cause, fmt.Errorf("reopen transaction failed: %w", err))
	}
	tx.Status = model.TxPending
	return cause
}

func (s *adminService) Approve(ctx context.Context, txID string) (*model.Transaction, error) {
	tx, err := s.pending(ctx, txID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, tx, model.TxCompleted); err != nil {
		return nil, err
	}
	if tx.Type == model.TxDeposit {
		if _, err := s.balances.Credit(ctx, tx.UserID, tx.Amount); err != nil {
			return nil, s.reopen(ctx, tx, fmt.Errorf("credit deposit: %w", err))
		}
	}
	s.log.Info("transaction approved", zap.String("event", "tx_approved"), zap.String("tx_id", tx.ID), zap.String("type", string(tx.Type)))
	return tx, nil
}

func (s *adminService) Reject(ctx context.Context, txID string) (*model.Transaction, error) {
	tx, err := s.pending(ctx, txID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, tx, model.TxFailed); err != nil {
		return nil, err
	}
	if tx.Type == model.TxWithdrawal {
		if _, err := s.balances.Credit(ctx, tx.UserID, tx.Amount); err != nil {
			return nil, s.reopen(ctx, tx, fmt.Errorf("refund withdrawal: %w", err))
		}
	}
	s.log.Info("transaction rejected", zap.String("event", "tx_rejected"), zap.String("tx_id", tx.ID), zap.String("type", string(tx.Type)))
	return tx, nil
}
