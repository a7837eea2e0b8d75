package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"tron-balance-bot/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type stubAssetSource struct {
	mu     sync.Mutex
	assets []domain.AssetPrice
	err    error
	calls  int
}

func (s *stubAssetSource) FetchAssetPrices(ctx context.Context) ([]domain.AssetPrice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.assets, nil
}

type stubCoins struct {
	prices      map[string]float64
	searchIDs   map[string]string
	priceErr    error
	searchErr   error
	priceCalls  int
	searchCalls int
}

func (s *stubCoins) SimplePrice(ctx context.Context, coinID string) (float64, bool, error) {
	s.priceCalls++
	if s.priceErr != nil {
		return 0, false, s.priceErr
	}
	p, ok := s.prices[coinID]
	return p, ok, nil
}

func (s *stubCoins) Search(ctx context.Context, query string) (string, bool, error) {
	s.searchCalls++
	if s.searchErr != nil {
		return "", false, s.searchErr
	}
	id, ok := s.searchIDs[query]
	return id, ok, nil
}

type memWalletStore struct {
	mu        sync.Mutex
	wallets   []domain.Wallet
	nextID    int64
	touched   map[int64]time.Time
	listErr   error
	createErr error
}

func newMemWalletStore(wallets ...domain.Wallet) *memWalletStore {
	s := &memWalletStore{touched: make(map[int64]time.Time)}
	for _, w := range wallets {
		s.nextID++
		if w.ID == 0 {
			w.ID = s.nextID
		}
		if w.CreatedAt.IsZero() {
			w.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.nextID) * time.Hour)
		}
		s.wallets = append(s.wallets, w)
	}
	return s
}

func (s *memWalletStore) Create(ctx context.Context, wallet *domain.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, w := range s.wallets {
		if w.Address == wallet.Address {
			return domain.ErrDuplicateWallet
		}
	}
	s.nextID++
	wallet.ID = s.nextID
	s.wallets = append(s.wallets, *wallet)
	return nil
}

func (s *memWalletStore) List(ctx context.Context) ([]domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.Wallet(nil), s.wallets...), nil
}

func (s *memWalletStore) ListNewestFirst(ctx context.Context) ([]domain.Wallet, error) {
	out, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memWalletStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wallets), nil
}

func (s *memWalletStore) TouchLastCheck(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched[id] = at
	return nil
}

func (s *memWalletStore) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.Address == address {
			w := w
			return &w, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memHistoryStore struct {
	mu        sync.Mutex
	records   []domain.BalanceHistory
	recordErr error
}

func (s *memHistoryStore) Record(ctx context.Context, entry *domain.BalanceHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordErr != nil {
		return s.recordErr
	}
	entry.ID = int64(len(s.records) + 1)
	s.records = append(s.records, *entry)
	return nil
}

func (s *memHistoryStore) Latest(ctx context.Context, walletID int64) (*domain.BalanceHistory, error) {
	two, _ := s.LatestTwo(ctx, walletID)
	if len(two) == 0 {
		return nil, domain.ErrNotFound
	}
	return &two[0], nil
}

func (s *memHistoryStore) LatestTwo(ctx context.Context, walletID int64) ([]domain.BalanceHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.BalanceHistory
	for i := len(s.records) - 1; i >= 0 && len(out) < 2; i-- {
		if s.records[i].WalletID == walletID {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func (s *memHistoryStore) LatestPerWallet(ctx context.Context) (map[int64]domain.BalanceHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]domain.BalanceHistory)
	for _, r := range s.records {
		out[r.WalletID] = r
	}
	return out, nil
}

func floatPtr(v float64) *float64 { return &v }
