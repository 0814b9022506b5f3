// Package worker runs the background jobs of the API: settling expired demo trades and
// paying investment earnings.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DueCloser settles positions whose close time has passed.
type DueCloser interface {
	CloseDue(ctx context.Context, now time.Time) (int, error)
}

// TradeCloser polls for expired trades on a fixed interval.
type TradeCloser struct {
	closer   DueCloser
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewTradeCloser constructs a TradeCloser. A non-positive interval means one second.
func NewTradeCloser(closer DueCloser, interval time.Duration, log *zap.Logger) *TradeCloser {
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TradeCloser{
		closer:   closer,
		interval: interval,
		log:      log.Named("trade_closer"),
		now:      func() time.Time { return time.Now().UTC() },
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the loop in a goroutine until ctx is cancelled or Stop is called.
// Calls after the first are ignored.
func (w *TradeCloser) Start(ctx context.Context) {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.log.Info("trade closer started", zap.String("event", "worker_start"), zap.Duration("interval", w.interval))
	go w.loop(ctx)
}

// Stop ends the loop and waits for the current cycle to finish.
func (w *TradeCloser) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	if !w.started.Load() {
		return
	}
	<-w.done
}

func (w *TradeCloser) loop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cycle.
func (w *TradeCloser) RunOnce(ctx context.Context) int {
	n, err := w.closer.CloseDue(ctx, w.now())
	if err != nil {
		w.log.Error("closing due trades failed",
			zap.String("event", "trade_close_failed"),
			zap.Int("closed", n),
			zap.Error(err),
		)
	}
	if n > 0 {
		w.log.Info("due trades closed", zap.String("event", "trades_closed"), zap.Int("closed", n))
	}
	return n
}
