package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tron-balance-bot/internal/domain"
)

type fakeMirror struct {
	quotes  map[string]domain.PriceQuote
	loadErr error
	saves   int
}

func (m *fakeMirror) Save(ctx context.Context, key string, quote domain.PriceQuote, ttl time.Duration) error {
	m.saves++
	m.quotes[key] = quote
	return nil
}

func (m *fakeMirror) Load(ctx context.Context, key string) (domain.PriceQuote, bool, error) {
	if m.loadErr != nil {
		return domain.PriceQuote{}, false, m.loadErr
	}
	q, ok := m.quotes[key]
	return q, ok, nil
}

func TestPriceCacheExpiresWithClock(t *testing.T) {
	clock := newFakeClock()
	cache := NewPriceCache(5*time.Minute, clock.Now, nil, nil)
	ctx := context.Background()

	cache.Put(ctx, "Tron", 0.25)

	clock.Advance(4*time.Minute + 59*time.Second)
	q, ok := cache.Get(ctx, "tron")
	if !ok || q.UnitPriceUSD != 0.25 {
		t.Fatalf("expected cached quote within ttl, got %+v ok=%v", q, ok)
	}

	clock.Advance(time.Second)
	if _, ok := cache.Get(ctx, "tron"); ok {
		t.Fatal("expected quote to expire at ttl")
	}
}

func TestPriceCacheFallsBackToMirror(t *testing.T) {
	clock := newFakeClock()
	mirror := &fakeMirror{quotes: map[string]domain.PriceQuote{
		"tron":    {UnitPriceUSD: 0.3, FetchedAt: clock.Now().Add(-time.Minute)},
		"bitcoin": {UnitPriceUSD: 90000, FetchedAt: clock.Now().Add(-time.Hour)},
	}}
	cache := NewPriceCache(5*time.Minute, clock.Now, mirror, nil)
	ctx := context.Background()

	q, ok := cache.Get(ctx, "tron")
	if !ok || q.UnitPriceUSD != 0.3 {
		t.Fatalf("expected mirror hit, got %+v ok=%v", q, ok)
	}
	if _, ok := cache.Get(ctx, "bitcoin"); ok {
		t.Fatal("expected stale mirror entry to be ignored")
	}

	cache.Put(ctx, "dai", 1)
	if mirror.saves != 1 {
		t.Fatalf("expected put to write through, got %d saves", mirror.saves)
	}
}

func TestPriceCacheMirrorErrorIsMiss(t *testing.T) {
	mirror := &fakeMirror{quotes: map[string]domain.PriceQuote{}, loadErr: errors.New("redis down")}
	cache := NewPriceCache(time.Minute, nil, mirror, nil)

	if _, ok := cache.Get(context.Background(), "tron"); ok {
		t.Fatal("expected miss when mirror fails")
	}
}
