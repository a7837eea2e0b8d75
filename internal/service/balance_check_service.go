package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tron-balance-bot/internal/domain"
	"tron-balance-bot/internal/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Fetcher interface {
	Fetch(ctx context.Context, address string) domain.FetchResult
}

type Evaluator interface {
	Evaluate(ctx context.Context, fetch domain.FetchResult, previous *float64) (*domain.ValuationResult, error)
}

type RunNotifier interface {
	NotifyRunSummary(ctx context.Context, summary *domain.RunSummary) error
}

// RunLocker guards runs across processes sharing the same database.
type RunLocker interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type BalanceCheckOptions struct {
	Pacing time.Duration
	Lock   RunLocker
	Now    func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error
}

// AddressCheck is an ad-hoc valuation that is not persisted.
type AddressCheck struct {
	Address   string                  `json:"address"`
	Fetch     domain.FetchResult      `json:"fetch"`
	Valuation *domain.ValuationResult `json:"valuation,omitempty"`
}

// BalanceCheckService runs the full valuation pass over every stored wallet.
// At most one run is in flight per process, and per deployment when a
// RunLocker is configured.
type BalanceCheckService struct {
	tracer    trace.Tracer
	logger    *zap.Logger
	fetcher   Fetcher
	evaluator Evaluator
	wallets   WalletStore
	history   HistoryStore
	lock      RunLocker
	pacing    time.Duration
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	running   atomic.Bool
	notifyMu  sync.RWMutex
	notifiers []RunNotifier
}

func NewBalanceCheckService(
	tracer trace.Tracer,
	logger *zap.Logger,
	fetcher Fetcher,
	evaluator Evaluator,
	wallets WalletStore,
	history HistoryStore,
	opts BalanceCheckOptions,
) *BalanceCheckService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &BalanceCheckService{
		tracer:    tracer,
		logger:    logger.Named("balance-check"),
		fetcher:   fetcher,
		evaluator: evaluator,
		wallets:   wallets,
		history:   history,
		lock:      opts.Lock,
		pacing:    opts.Pacing,
		now:       opts.Now,
		sleep:     opts.Sleep,
	}
}

func (s *BalanceCheckService) AddNotifier(n RunNotifier) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.notifiers = append(s.notifiers, n)
}

func (s *BalanceCheckService) IsRunning() bool {
	return s.running.Load()
}

// RunFullCheck values every wallet in store order and records a history entry
// for each success. A trigger that arrives while a run is active is dropped
// with ErrRunInProgress.
func (s *BalanceCheckService) RunFullCheck(ctx context.Context) (*domain.RunSummary, error) {
	if !s.mu.TryLock() {
		metrics.Runs.WithLabelValues("skipped").Inc()
		s.logger.Info("balance run already in progress, trigger dropped")
		return nil, ErrRunInProgress
	}
	defer s.mu.Unlock()

	if s.lock != nil {
		acquired, err := s.lock.TryAcquire(ctx)
		switch {
		case err != nil:
			s.logger.Warn("run lock unavailable, continuing with local lock only", zap.Error(err))
		case !acquired:
			metrics.Runs.WithLabelValues("skipped").Inc()
			s.logger.Info("balance run held by another instance, trigger dropped")
			return nil, ErrRunInProgress
		default:
			defer func() {
				if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
					s.logger.Warn("release run lock", zap.Error(err))
				}
			}()
		}
	}

	s.running.Store(true)
	defer s.running.Store(false)

	ctx, span := s.tracer.Start(ctx, "balance-check.run-full-check")
	defer span.End()

	summary, err := s.run(ctx)
	if err != nil {
		metrics.Runs.WithLabelValues("failed").Inc()
		span.RecordError(err)
		return summary, err
	}

	metrics.Runs.WithLabelValues("ok").Inc()
	metrics.RunDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	metrics.NetAssets.Set(summary.TotalUSD)
	span.SetAttributes(
		attribute.Int("run.wallets", summary.WalletsChecked),
		attribute.Int("run.errors", summary.ErrorCount),
		attribute.Float64("run.total_usd", summary.TotalUSD),
	)
	s.logger.Info("balance run finished",
		zap.Int("wallets", summary.WalletsChecked),
		zap.Int("succeeded", summary.SuccessCount),
		zap.Int("failed", summary.ErrorCount),
		zap.Float64("total_usd", summary.TotalUSD),
		zap.Float64("previous_total_usd", summary.PreviousTotalUSD),
		zap.Duration("took", summary.FinishedAt.Sub(summary.StartedAt)),
	)

	s.notify(ctx, summary)
	return summary, nil
}

func (s *BalanceCheckService) run(ctx context.Context) (*domain.RunSummary, error) {
	started := s.now()

	latest, err := s.history.LatestPerWallet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load latest balances: %w", err)
	}
	wallets, err := s.wallets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}

	summary := &domain.RunSummary{
		WalletsChecked:   len(wallets),
		PreviousTotalUSD: sumLatest(latest),
		StartedAt:        started,
		Wallets:          make([]domain.WalletResult, 0, len(wallets)),
	}

	for i, wallet := range wallets {
		if i > 0 && s.pacing > 0 {
			if err := s.sleep(ctx, s.pacing); err != nil {
				summary.FinishedAt = s.now()
				return summary, fmt.Errorf("run interrupted after %d of %d wallets: %w", i, len(wallets), err)
			}
		}

		var previous *float64
		if h, ok := latest[wallet.ID]; ok {
			v := h.BalanceUSD
			previous = &v
		}

		result := s.checkWallet(ctx, wallet, previous)
		summary.Wallets = append(summary.Wallets, result)
		if result.Success {
			summary.SuccessCount++
			summary.TotalUSD += result.CurrentUSD
			metrics.Wallets.WithLabelValues("ok").Inc()
		} else {
			summary.ErrorCount++
			metrics.Wallets.WithLabelValues("error").Inc()
		}
	}

	summary.FinishedAt = s.now()
	return summary, nil
}

func (s *BalanceCheckService) checkWallet(ctx context.Context, wallet domain.Wallet, previous *float64) domain.WalletResult {
	result := domain.WalletResult{
		WalletID:    wallet.ID,
		Address:     wallet.Address,
		Project:     wallet.Project,
		PreviousUSD: previous,
	}

	fetch := s.fetcher.Fetch(ctx, wallet.Address)
	valuation, err := s.evaluator.Evaluate(ctx, fetch, previous)
	if err != nil {
		result.Error = err.Error()
		s.logger.Warn("wallet skipped", zap.String("address", wallet.Address), zap.Error(err))
		return result
	}

	checkedAt := s.now()
	var usdt float64
	if tok, ok := fetch.TokenBy(domain.USDTContract); ok {
		usdt = tok.Balance
	}
	entry := &domain.BalanceHistory{
		WalletID:           wallet.ID,
		Address:            wallet.Address,
		BalanceUSD:         valuation.TotalUSD,
		PreviousBalanceUSD: previous,
		BalanceNative:      fetch.NativeCoinBalance,
		BalanceUSDT:        usdt,
		CheckedAt:          checkedAt,
	}
	if err := s.history.Record(ctx, entry); err != nil {
		result.Error = fmt.Sprintf("record history: %v", err)
		s.logger.Warn("wallet history not recorded", zap.String("address", wallet.Address), zap.Error(err))
		return result
	}
	if err := s.wallets.TouchLastCheck(ctx, wallet.ID, checkedAt); err != nil {
		s.logger.Warn("update last balance check", zap.Int64("wallet_id", wallet.ID), zap.Error(err))
	}

	result.Success = true
	result.CurrentUSD = valuation.TotalUSD
	result.DeltaUSD = valuation.DeltaUSD
	result.DeltaPercent = valuation.DeltaPercent
	result.IsFirstValuation = valuation.IsFirstValuation

	s.logger.Debug("wallet valued",
		zap.String("address", wallet.Address),
		zap.Float64("total_usd", valuation.TotalUSD),
		zap.Int("priced_tokens", len(valuation.PerToken)),
	)
	return result
}

func (s *BalanceCheckService) notify(ctx context.Context, summary *domain.RunSummary) {
	s.notifyMu.RLock()
	notifiers := append([]RunNotifier(nil), s.notifiers...)
	s.notifyMu.RUnlock()

	for _, n := range notifiers {
		if err := n.NotifyRunSummary(ctx, summary); err != nil {
			s.logger.Warn("run summary notification failed", zap.Error(err))
		}
	}
}

// CheckAddress fetches and values one address without recording anything.
// A stored wallet's latest valuation is used as the previous total.
func (s *BalanceCheckService) CheckAddress(ctx context.Context, address string) (*AddressCheck, error) {
	ctx, span := s.tracer.Start(ctx, "balance-check.check-address")
	defer span.End()

	check := &AddressCheck{Address: address}
	previous := s.previousForAddress(ctx, address)

	check.Fetch = s.fetcher.Fetch(ctx, address)
	valuation, err := s.evaluator.Evaluate(ctx, check.Fetch, previous)
	if err != nil {
		return check, err
	}
	check.Valuation = valuation
	return check, nil
}

func (s *BalanceCheckService) previousForAddress(ctx context.Context, address string) *float64 {
	if s.wallets == nil || s.history == nil {
		return nil
	}
	wallet, err := s.wallets.GetByAddress(ctx, address)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("wallet lookup failed", zap.String("address", address), zap.Error(err))
		}
		return nil
	}
	latest, err := s.history.Latest(ctx, wallet.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("history lookup failed", zap.Int64("wallet_id", wallet.ID), zap.Error(err))
		}
		return nil
	}
	v := latest.BalanceUSD
	return &v
}

// NetAssets sums the latest recorded valuation of every wallet.
func (s *BalanceCheckService) NetAssets(ctx context.Context) (*domain.NetAssets, error) {
	if s.wallets == nil || s.history == nil {
		return nil, ErrNoStorage
	}
	ctx, span := s.tracer.Start(ctx, "balance-check.net-assets")
	defer span.End()

	latest, err := s.history.LatestPerWallet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load latest balances: %w", err)
	}
	count, err := s.wallets.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count wallets: %w", err)
	}

	out := &domain.NetAssets{TotalUSD: sumLatest(latest), WalletCount: count}
	for _, h := range latest {
		if out.LastCheckedAt == nil || h.CheckedAt.After(*out.LastCheckedAt) {
			at := h.CheckedAt
			out.LastCheckedAt = &at
		}
	}
	return out, nil
}

func sumLatest(latest map[int64]domain.BalanceHistory) float64 {
	var total float64
	for _, h := range latest {
		total += h.BalanceUSD
	}
	return total
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
