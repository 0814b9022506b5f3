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

// TradeDurations are the accepted position lifetimes in seconds.
var TradeDurations = []int{60, 300, 900}

// OpenTradeInput is the trading panel order form.
type OpenTradeInput struct {
	Pair     string          `json:"pair"`
	Side     model.TradeSide `json:"side"`
	Amount   decimal.Decimal `json:"amount"`
	Duration int             `json:"duration"`
}

// TradingService defines the demo trading simulator use cases.
type TradingService interface {
	// Open debits the demo balance and opens a position at the current price.
	Open(ctx context.Context, userID string, in OpenTradeInput) (*model.Trade, error)
	// Close settles an open position of userID at the current price.
	Close(ctx context.Context, userID, tradeID string) (*model.Trade, error)
	// CloseDue settles every open position whose close time has passed and returns how many were closed.
	CloseDue(ctx context.Context, now time.Time) (int, error)
	History(ctx context.Context, userID string) ([]model.Trade, error)
	Stats(ctx context.Context, userID string) (*model.TradeStats, error)
	// Reset restores the starting demo balance and clears the trade history.
	Reset(ctx context.Context, userID string) (*model.Balance, error)
}

type tradingService struct {
	trades      repository.TradeRepository
	balances    repository.BalanceRepository
	feed        PriceFeed
	demoBalance decimal.Decimal
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

// NewTradingService constructs a new TradingService.
func NewTradingService(
	trades repository.TradeRepository,
	balances repository.BalanceRepository,
	feed PriceFeed,
	demoBalance decimal.Decimal,
	m *metrics.Metrics,
	log *zap.Logger,
) TradingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &tradingService{
		trades:      trades,
		balances:    balances,
		feed:        feed,
		demoBalance: demoBalance,
		metrics:     m,
		log:         log.Named("trading"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *tradingService) currentPrice(pair string) (decimal.Decimal, error) {
	base, ok := s.feed.BaseOf(pair)
	if !ok {
		return decimal.Zero, ErrUnknownPair
	}
	price, ok := s.feed.Price(base)
	if !ok || !price.IsPositive() {
		return decimal.Zero, ErrPriceUnavailable
	}
	return price, nil
}

func (s *tradingService) Open(ctx context.Context, userID string, in OpenTradeInput) (*model.Trade, error) {
	ctx, span := tracer.Start(ctx, "trading.Open")
	defer span.End()

	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !in.Side.Valid() {
		return nil, ErrInvalidSide
	}
	if !slices.Contains(TradeDurations, in.Duration) {
		return nil, ErrInvalidDuration
	}
	pair := strings.ToUpper(strings.TrimSpace(in.Pair))
	price, err := s.currentPrice(pair)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("pair", pair), attribute.String("side", string(in.Side)))

	if _, err := s.balances.DebitDemo(ctx, userID, in.Amount); err != nil {
		return nil, funds("debit demo balance", err)
	}

	now := s.now()
	t, err := s.trades.Create(ctx, &model.Trade{
		ID:         uuid.NewString(),
		UserID:     userID,
		Pair:       pair,
		Side:       in.Side,
		Amount:     in.Amount,
		EntryPrice: price,
		Status:     model.TradeOpen,
		OpenedAt:   now,
		CloseAt:    now.Add(time.Duration(in.Duration) * time.Second),
	})
	if err != nil {
		if _, credErr := s.balances.CreditDemo(ctx, userID, in.Amount); credErr != nil {
			return nil, errors.Join(fmt.Errorf("create trade: %w", err), fmt.Errorf("rollback credit failed: %w", credErr))
		}
		return nil, fmt.Errorf("create trade: %w", err)
	}

	s.metrics.TradeOpened(pair)
	return t, nil
}

func (s *tradingService) Close(ctx context.Context, userID, tradeID string) (*model.Trade, error) {
	t, err := s.trades.FindByID(ctx, tradeID)
	if err != nil {
		return nil, notFound("find trade", err)
	}
	if t.UserID != userID {
		return nil, ErrNotFound
	}
	if t.Status != model.TradeOpen {
		return nil, ErrTradeNotOpen
	}
	return s.settle(ctx, *t, true, s.now())
}

// settle closes t at the current price and pays amount+profit (never below zero) back
// to the demo balance.
func (s *tradingService) settle(ctx context.Context, t model.Trade, manual bool, now time.Time) (*model.Trade, error) {
	exit, err := s.currentPrice(t.Pair)
	if err != nil {
		return nil, err
	}
	profit := t.ProfitAt(exit)

	closed, err := s.trades.Close(ctx, t.ID, exit, profit, manual, now)
	if errors.Is(err, repository.ErrStale) {
		return nil, ErrTradeNotOpen
	}
	if err != nil {
		return nil, fmt.Errorf("close trade: %w", err)
	}

	payout := t.Amount.Add(profit)
	if payout.IsPositive() {
		if _, err := s.balances.CreditDemo(ctx, t.UserID, payout); err != nil {
			s.log.Error("closed trade not paid out",
				zap.String("event", "trade_payout_failed"),
				zap.String("trade_id", t.ID),
				zap.String("user_id", t.UserID),
				zap.String("payout", payout.String()),
				zap.Error(err),
			)
			return nil, fmt.Errorf("credit demo balance: %w", err)
		}
	}

	s.metrics.TradeClosed(profit.Sign())
	s.log.Debug("trade closed",
		zap.String("event", "trade_closed"),
		zap.String("trade_id", t.ID),
		zap.Bool("manual", manual),
		zap.String("profit", profit.String()),
	)
	return closed, nil
}

func (s *tradingService) CloseDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.trades.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due trades: %w", err)
	}

	closed := 0
	var errs []error
	for _, t := range due {
		_, err := s.settle(ctx, t, false, now)
		switch {
		case err == nil:
			closed++
		case errors.Is(err, ErrTradeNotOpen):
		default:
			errs = append(errs, fmt.Errorf("trade %s: %w", t.ID, err))
		}
	}
	return closed, errors.Join(errs...)
}

func (s *tradingService) History(ctx context.Context, userID string) ([]model.Trade, error) {
	items, err := s.trades.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return items, nil
}

func (s *tradingService) Stats(ctx context.Context, userID string) (*model.TradeStats, error) {
	b, err := s.balances.Get(ctx, userID)
	if err != nil {
		return nil, notFound("get balance", err)
	}
	trades, err := s.trades.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}

	st := &model.TradeStats{DemoBalance: b.DemoBalance, TotalProfit: decimal.Zero, TotalTrades: len(trades)}
	closed, wins := 0, 0
	for _, t := range trades {
		if t.Status == model.TradeOpen {
			st.OpenTrades++
			continue
		}
		closed++
		st.TotalProfit = st.TotalProfit.Add(t.Profit)
		if t.Profit.IsPositive() {
			wins++
		}
	}
	if closed > 0 {
		st.WinRate = float64(wins) / float64(closed) * 100
	}
	return st, nil
}

func (s *tradingService) Reset(ctx context.Context, userID string) (*model.Balance, error) {
	b, err := s.balances.SetDemo(ctx, userID, s.demoBalance)
	if err != nil {
		return nil, notFound("reset demo balance", err)
	}
	n, err := s.trades.DeleteByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("clear trades: %w", err)
	}
	s.log.Info("simulator reset", zap.String("event", "trading_reset"), zap.String("user_id", userID), zap.Int64("trades_removed", n))
	return b, nil
}
