// Package market provides the simulated price feed used by the trading panel and
// the investment quotes, plus a mirror of a public quote API.
package market

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cryptoinvest/internal/model"
)

// Symbol seed prices in USD, in display order.
var defaultSeeds = []seed{
	{"BTC", 45000},
	{"ETH", 3200},
	{"USDT", 1.00},
	{"BNB", 320},
	{"ADA", 0.85},
}

var defaultPairs = []string{"BTC/USDT", "ETH/USDT", "BNB/USDT", "ADA/USDT"}

const (
	minPrice      = 0.01
	seedSpacing   = 2 * time.Second
	maxStepChange = 1.0 // percent
)

type seed struct {
	symbol string
	price  float64
}

type series struct {
	price   float64
	change  float64
	updated time.Time
	history []model.PricePoint
}

// SimulatorConfig tunes the random walk.
type SimulatorConfig struct {
	TickInterval time.Duration
	HistorySize  int
	SeedPoints   int
}

// Simulator is a random-walk price feed. It is safe for concurrent use.
type Simulator struct {
	cfg SimulatorConfig
	log *zap.Logger

	mu     sync.RWMutex
	rnd    *rand.Rand
	order  []string
	series map[string]*series
	now    func() time.Time

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSimulator seeds every symbol with cfg.SeedPoints historical points.
func NewSimulator(cfg SimulatorConfig, log *zap.Logger) *Simulator {
	return newSimulator(cfg, log, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)), time.Now)
}

func newSimulator(cfg SimulatorConfig, log *zap.Logger, rnd *rand.Rand, now func() time.Time) *Simulator {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 2 * time.Second
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 100
	}
	if cfg.SeedPoints < 0 || cfg.SeedPoints > cfg.HistorySize {
		cfg.SeedPoints = cfg.HistorySize
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Simulator{
		cfg:    cfg,
		log:    log.Named("market"),
		rnd:    rnd,
		series: make(map[string]*series, len(defaultSeeds)),
		now:    now,
	}

	start := now().Add(-time.Duration(cfg.SeedPoints) * seedSpacing)
	for _, sd := range defaultSeeds {
		sr := &series{price: sd.price, history: make([]model.PricePoint, 0, cfg.HistorySize)}
		for i := 0; i < cfg.SeedPoints; i++ {
			sr.step(s.rnd)
			ts := start.Add(time.Duration(i+1) * seedSpacing)
			sr.updated = ts
			sr.history = append(sr.history, model.PricePoint{Time: ts, Value: sr.price})
		}
		if cfg.SeedPoints == 0 {
			sr.updated = now()
		}
		s.order = append(s.order, sd.symbol)
		s.series[sd.symbol] = sr
	}
	return s
}

// step applies one uniform change in [-1%, +1%) with a price floor.
func (sr *series) step(rnd *rand.Rand) {
	change := (rnd.Float64()*2 - 1) * maxStepChange
	p := sr.price * (1 + change/100)
	if p < minPrice {
		p = minPrice
	}
	sr.price = p
	sr.change = change
}

// Tick advances every symbol by one step and appends to its history.
func (s *Simulator) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	for _, sym := range s.order {
		sr := s.series[sym]
		sr.step(s.rnd)
		sr.updated = ts
		sr.history = append(sr.history, model.PricePoint{Time: ts, Value: sr.price})
		if over := len(sr.history) - s.cfg.HistorySize; over > 0 {
			sr.history = append(sr.history[:0], sr.history[over:]...)
		}
	}
}

// Start ticks in a background goroutine until ctx is done or Stop is called.
func (s *Simulator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		t := time.NewTicker(s.cfg.TickInterval)
		defer t.Stop()

		s.log.Info("price simulator started",
			zap.String("event", "market_start"),
			zap.Duration("interval", s.cfg.TickInterval),
		)
		for {
			select {
			case <-ctx.Done():
				s.log.Info("price simulator stopped", zap.String("event", "market_stop"))
				return
			case <-t.C:
				s.Tick()
			}
		}
	}()
}

// Stop cancels the ticker and waits for it to exit.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
	})
}

// Quote returns the current price of symbol.
func (s *Simulator) Quote(symbol string) (model.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sym := strings.ToUpper(symbol)
	sr, ok := s.series[sym]
	if !ok {
		return model.Quote{}, false
	}
	return model.Quote{Symbol: sym, Price: sr.price, Change: sr.change, UpdatedAt: sr.updated}, true
}

// Quotes returns every symbol in display order.
func (s *Simulator) Quotes() []model.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Quote, 0, len(s.order))
	for _, sym := range s.order {
		sr := s.series[sym]
		out = append(out, model.Quote{Symbol: sym, Price: sr.price, Change: sr.change, UpdatedAt: sr.updated})
	}
	return out
}

// History returns a copy of the retained points of symbol, oldest first.
func (s *Simulator) History(symbol string) ([]model.PricePoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sr, ok := s.series[strings.ToUpper(symbol)]
	if !ok {
		return nil, false
	}
	out := make([]model.PricePoint, len(sr.history))
	copy(out, sr.history)
	return out, true
}

// Price returns the current price of symbol as a decimal rounded to 8 places.
func (s *Simulator) Price(symbol string) (decimal.Decimal, bool) {
	q, ok := s.Quote(symbol)
	if !ok || q.Price <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(q.Price).Round(8), true
}

// Pairs lists the tradable pairs.
func (s *Simulator) Pairs() []string {
	out := make([]string, len(defaultPairs))
	copy(out, defaultPairs)
	return out
}

// BaseOf returns the base symbol of a tradable pair, e.g. BTC for BTC/USDT.
func (s *Simulator) BaseOf(pair string) (string, bool) {
	p := strings.ToUpper(pair)
	for _, known := range defaultPairs {
		if known == p {
			base, _, _ := strings.Cut(p, "/")
			return base, true
		}
	}
	return "", false
}
