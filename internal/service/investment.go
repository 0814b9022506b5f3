package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"cryptoinvest/internal/metrics"
	"cryptoinvest/internal/model"
	"cryptoinvest/internal/repository"
)

var planCurrencies = []string{"USDT", "BTC", "ETH"}

var plans = []model.Plan{
	{ID: 1, Name: "Plan Básico", MinAmount: decimal.NewFromInt(100), MaxAmount: decimal.NewFromInt(999),
		DailyReturn: decimal.RequireFromString("1.5"), DurationDays: 30, Description: "Perfecto para principiantes"},
	{ID: 2, Name: "Plan Estándar", MinAmount: decimal.NewFromInt(1000), MaxAmount: decimal.NewFromInt(4999),
		DailyReturn: decimal.RequireFromString("2.0"), DurationDays: 30, Description: "Para inversores intermedios"},
	{ID: 3, Name: "Plan Premium", MinAmount: decimal.NewFromInt(5000), MaxAmount: decimal.NewFromInt(19999),
		DailyReturn: decimal.RequireFromString("2.5"), DurationDays: 30, Description: "Para inversores avanzados"},
	{ID: 4, Name: "Plan VIP", MinAmount: decimal.NewFromInt(20000), MaxAmount: decimal.NewFromInt(100000),
		DailyReturn: decimal.RequireFromString("3.0"), DurationDays: 30, Description: "Para grandes inversores"},
}

// InvestInput is the investment form.
type InvestInput struct {
	PlanID   int             `json:"plan_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// InvestmentQuote previews an investment before it is made.
type InvestmentQuote struct {
	Plan         model.Plan      `json:"plan"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	AmountUSD    decimal.Decimal `json:"amount_usd"`
	DailyEarning decimal.Decimal `json:"daily_earning"`
	TotalReturn  decimal.Decimal `json:"total_return"`
}

// AccrualReport summarises one accrual run.
type AccrualReport struct {
	Scanned   int `json:"scanned"`
	DaysPaid  int `json:"days_paid"`
	Completed int `json:"completed"`
}

// InvestmentService defines plan catalogue and investment lifecycle use cases.
type InvestmentService interface {
	Plans() []model.Plan
	Quote(in InvestInput) (*InvestmentQuote, error)
	// Invest debits the USD value from the real balance and opens the investment.
	Invest(ctx context.Context, userID string, in InvestInput) (*model.Investment, error)
	List(ctx context.Context, userID string) ([]model.Investment, error)
	// Accrue pays every elapsed, unpaid day of every active investment and returns the
	// principal of those that reached their duration.
	Accrue(ctx context.Context, now time.Time) (*AccrualReport, error)
}

type investmentService struct {
	investments repository.InvestmentRepository
	balances    repository.BalanceRepository
	txs         repository.TransactionRepository
	feed        PriceFeed
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

// NewInvestmentService constructs a new InvestmentService.
func NewInvestmentService(
	investments repository.InvestmentRepository,
	balances repository.BalanceRepository,
	txs repository.TransactionRepository,
	feed PriceFeed,
	m *metrics.Metrics,
	log *zap.Logger,
) InvestmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &investmentService{
		investments: investments,
		balances:    balances,
		txs:         txs,
		feed:        feed,
		metrics:     m,
		log:         log.Named("investment"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *investmentService) Plans() []model.Plan {
	out := make([]model.Plan, len(plans))
	for i, p := range plans {
		p.Currencies = slices.Clone(planCurrencies)
		out[i] = p
	}
	return out
}

func findPlan(id int) (model.Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			p.Currencies = slices.Clone(planCurrencies)
			return p, true
		}
	}
	return model.Plan{}, false
}

func (s *investmentService) Quote(in InvestInput) (*InvestmentQuote, error) {
	plan, ok := findPlan(in.PlanID)
	if !ok {
		return nil, ErrPlanNotFound
	}
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USDT"
	}
	if !slices.Contains(plan.Currencies, currency) {
		return nil, ErrUnsupportedCurrency
	}
	usd, err := toUSD(s.feed, in.Amount, currency)
	if err != nil {
		return nil, err
	}
	if usd.LessThan(plan.MinAmount) || usd.GreaterThan(plan.MaxAmount) {
		return nil, fmt.Errorf("%w: $%s must be between $%s and $%s",
			ErrAmountOutOfRange, usd.StringFixed(2), plan.MinAmount, plan.MaxAmount)
	}

	daily := model.Investment{Amount: usd, DailyReturn: plan.DailyReturn}.DailyEarning()
	return &InvestmentQuote{
		Plan:         plan,
		Amount:       in.Amount,
		Currency:     currency,
		AmountUSD:    usd,
		DailyEarning: daily,
		TotalReturn:  daily.Mul(decimal.NewFromInt(int64(plan.DurationDays))),
	}, nil
}

func (s *investmentService) Invest(ctx context.Context, userID string, in InvestInput) (*model.Investment, error) {
	ctx, span := tracer.Start(ctx, "investment.Invest")
	defer span.End()

	q, err := s.Quote(in)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("plan", q.Plan.Name), attribute.String("currency", q.Currency))

	if _, err := s.balances.Debit(ctx, userID, q.AmountUSD); err != nil {
		return nil, funds("debit balance", err)
	}

	now := s.now()
	inv, err := s.investments.Create(ctx, &model.Investment{
		ID:             uuid.NewString(),
		UserID:         userID,
		PlanID:         q.Plan.ID,
		PlanName:       q.Plan.Name,
		Amount:         q.AmountUSD,
		Currency:       q.Currency,
		OriginalAmount: q.Amount,
		DailyReturn:    q.Plan.DailyReturn,
		DurationDays:   q.Plan.DurationDays,
		Status:         model.InvestmentActive,
		CreatedAt:      now,
	})
	if err != nil {
		if _, credErr := s.balances.Credit(ctx, userID, q.AmountUSD); credErr != nil {
			return nil, errors.Join(fmt.Errorf("create investment: %w", err), fmt.Errorf("rollback credit failed: %w", credErr))
		}
		return nil, fmt.Errorf("create investment: %w", err)
	}

	desc := fmt.Sprintf("Inversión en %s (%s %s)", q.Plan.Name, q.Amount.String(), q.Currency)
	if _, err := s.txs.Create(ctx, newTransaction(userID, model.TxInvestment, q.AmountUSD, "USD", desc, model.TxCompleted, now)); err != nil {
		s.log.Error("investment transaction not recorded",
			zap.String("event", "investment_tx_failed"), zap.String("investment_id", inv.ID), zap.Error(err))
	}

	s.metrics.InvestmentCreated(q.Plan.Name)
	s.log.Info("investment created",
		zap.String("event", "investment_created"),
		zap.String("user_id", userID),
		zap.String("investment_id", inv.ID),
		zap.String("amount_usd", q.AmountUSD.String()),
	)
	return inv, nil
}

func (s *investmentService) List(ctx context.Context, userID string) ([]model.Investment, error) {
	items, err := s.investments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return items, nil
}

func (s *investmentService) Accrue(ctx context.Context, now time.Time) (*AccrualReport, error) {
	ctx, span := tracer.Start(ctx, "investment.Accrue")
	defer span.End()

	active, err := s.investments.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active investments: %w", err)
	}

	report := &AccrualReport{Scanned: len(active)}
	var errs []error
	for _, inv := range active {
		paid, completed, err := s.accrueOne(ctx, inv, now)
		report.DaysPaid += paid
		if completed {
			report.Completed++
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("investment %s: %w", inv.ID, err))
		}
	}
	s.metrics.AccrualsPaid(report.DaysPaid)
	span.SetAttributes(attribute.Int("days_paid", report.DaysPaid), attribute.Int("completed", report.Completed))
	return report, errors.Join(errs...)
}

func (s *investmentService) accrueOne(ctx context.Context, inv model.Investment, now time.Time) (int, bool, error) {
	due := inv.DaysDue(now)
	paid := 0

	if due > inv.DaysPaid {
		days := due - inv.DaysPaid
		earned := inv.DailyEarning().Mul(decimal.NewFromInt(int64(days)))

		err := s.investments.RecordAccrual(ctx, inv.ID, inv.DaysPaid, due, earned, now)
		if errors.Is(err, repository.ErrStale) {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, fmt.Errorf("record accrual: %w", err)
		}
		if _, err := s.balances.Credit(ctx, inv.UserID, earned); err != nil {
			return 0, false, fmt.Errorf("credit earning: %w", err)
		}
		desc := fmt.Sprintf("Ganancia de %s (%d día(s))", inv.PlanName, days)
		if _, err := s.txs.Create(ctx, newTransaction(inv.UserID, model.TxEarning, earned, "USD", desc, model.TxCompleted, now)); err != nil {
			s.log.Error("earning transaction not recorded", zap.String("investment_id", inv.ID), zap.Error(err))
		}
		paid = days
	}

	if due < inv.DurationDays {
		return paid, false, nil
	}

	err := s.investments.Complete(ctx, inv.ID, now)
	if errors.Is(err, repository.ErrStale) {
		return paid, false, nil
	}
	if err != nil {
		return paid, false, fmt.Errorf("complete investment: %w", err)
	}
	if _, err := s.balances.Credit(ctx, inv.UserID, inv.Amount); err != nil {
		return paid, true, fmt.Errorf("return principal: %w", err)
	}
	desc := fmt.Sprintf("Devolución de capital de %s", inv.PlanName)
	if _, err := s.txs.Create(ctx, newTransaction(inv.UserID, model.TxInvestmentReturn, inv.Amount, "USD", desc, model.TxCompleted, now)); err != nil {
		s.log.Error("return transaction not recorded", zap.String("investment_id", inv.ID), zap.Error(err))
	}
	s.log.Info("investment completed",
		zap.String("event", "investment_completed"),
		zap.String("investment_id", inv.ID),
		zap.String("user_id", inv.UserID),
	)
	return paid, true, nil
}
