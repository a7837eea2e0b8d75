package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tron-balance-bot/internal/domain"
	"tron-balance-bot/internal/service"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type FullCheckRunner interface {
	RunFullCheck(ctx context.Context) (*domain.RunSummary, error)
}

// BalanceScheduler triggers full balance runs on cron specs evaluated in a
// fixed timezone.
type BalanceScheduler struct {
	tracer    trace.Tracer
	logger    *zap.Logger
	runner    FullCheckRunner
	location  *time.Location
	schedules []cron.Schedule
	specs     []string

	mu  sync.Mutex
	ctx context.Context
}

func NewBalanceScheduler(tracer trace.Tracer, logger *zap.Logger, runner FullCheckRunner, specs []string, timezone string) (*BalanceScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(specs) == 0 {
		return nil, errors.New("no check schedule configured")
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	s := &BalanceScheduler{
		tracer:   tracer,
		logger:   logger.Named("scheduler"),
		runner:   runner,
		location: loc,
		specs:    specs,
	}
	for _, spec := range specs {
		sched, err := cron.ParseStandard(spec)
		if err != nil {
			return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
		}
		s.schedules = append(s.schedules, sched)
	}
	return s, nil
}

func (s *BalanceScheduler) Location() *time.Location {
	return s.location
}

// NextRun returns the earliest scheduled trigger strictly after now, in the
// scheduler's timezone.
func (s *BalanceScheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.location)
	var next time.Time
	for _, sched := range s.schedules {
		t := sched.Next(local)
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next
}

// Start registers the schedules and blocks until ctx is cancelled. A run in
// flight is allowed to finish before Start returns.
func (s *BalanceScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	c := cron.New(cron.WithLocation(s.location))
	for i, sched := range s.schedules {
		c.Schedule(sched, cron.FuncJob(s.trigger))
		s.logger.Info("balance check scheduled", zap.String("spec", s.specs[i]), zap.String("timezone", s.location.String()))
	}
	c.Start()
	s.logger.Info("balance scheduler started", zap.Time("next_run", s.NextRun(time.Now())))

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("balance scheduler stopped")
}

func (s *BalanceScheduler) trigger() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	s.runOnce(ctx)
}

func (s *BalanceScheduler) runOnce(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "balance-scheduler.run")
	defer span.End()

	summary, err := s.runner.RunFullCheck(ctx)
	switch {
	case errors.Is(err, service.ErrRunInProgress):
		s.logger.Info("scheduled run skipped, previous run still active")
	case err != nil:
		span.RecordError(err)
		s.logger.Error("scheduled balance run failed", zap.Error(err))
	default:
		s.logger.Info("scheduled balance run complete",
			zap.Int("wallets", summary.WalletsChecked),
			zap.Float64("total_usd", summary.TotalUSD),
		)
	}
}
