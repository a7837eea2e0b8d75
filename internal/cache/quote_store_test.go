package cache

import (
	"context"
	"testing"
	"time"

	"tron-balance-bot/internal/domain"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	data map[string][]byte
	ttl  map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte), ttl: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = v
	case string:
		f.data[key] = []byte(v)
	}
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func TestQuoteStoreRoundTrip(t *testing.T) {
	r := newFakeRedis()
	store := NewQuoteStore(r, "quote:")
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, "tron", domain.PriceQuote{UnitPriceUSD: 0.25, FetchedAt: at}, 5*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ttl["quote:tron"] != 5*time.Minute {
		t.Fatalf("expected ttl to be forwarded, got %v", r.ttl["quote:tron"])
	}

	got, ok, err := store.Load(ctx, "tron")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.UnitPriceUSD != 0.25 || !got.FetchedAt.Equal(at) {
		t.Fatalf("unexpected quote: %+v", got)
	}
}

func TestQuoteStoreMiss(t *testing.T) {
	store := NewQuoteStore(newFakeRedis(), "quote:")
	_, ok, err := store.Load(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}
