package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"cryptoinvest/internal/service"
)

// Accruer pays investment earnings up to now.
type Accruer interface {
	Accrue(ctx context.Context, now time.Time) (*service.AccrualReport, error)
}

// Accrual runs Accruer on a cron schedule. Overlapping runs are skipped.
type Accrual struct {
	accruer Accruer
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     *zap.Logger
	now     func() time.Time
}

// NewAccrual parses schedule (standard five-field spec or a descriptor such as "@every 1h").
func NewAccrual(accruer Accruer, schedule string, log *zap.Logger) (*Accrual, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("accrual")

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	a := &Accrual{
		accruer: accruer,
		cron:    c,
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
	if _, err := c.AddFunc(schedule, func() { a.RunOnce(a.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid accrual schedule %q: %w", schedule, err)
	}
	return a, nil
}

// Start begins scheduling and runs one catch-up pass immediately.
func (a *Accrual) Start() {
	a.log.Info("accrual scheduler started", zap.String("event", "worker_start"))
	a.cron.Start()
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.RunOnce(a.ctx)
	}()
}

// Stop cancels in-flight runs and waits for them to return.
func (a *Accrual) Stop() {
	a.cancel()
	<-a.cron.Stop().Done()
	a.wg.Wait()
}

// RunOnce performs a single accrual pass.
func (a *Accrual) RunOnce(ctx context.Context) *service.AccrualReport {
	start := time.Now()
	rep, err := a.accruer.Accrue(ctx, a.now())
	if rep == nil {
		rep = &service.AccrualReport{}
	}
	fields := []zap.Field{
		zap.Int("scanned", rep.Scanned),
		zap.Int("days_paid", rep.DaysPaid),
		zap.Int("completed", rep.Completed),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	}
	if err != nil {
		a.log.Error("accrual run finished with errors", append(fields, zap.String("event", "accrual_failed"), zap.Error(err))...)
		return rep
	}
	a.log.Info("accrual run finished", append(fields, zap.String("event", "accrual_done"))...)
	return rep
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
