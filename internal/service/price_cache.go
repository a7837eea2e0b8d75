package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"tron-balance-bot/internal/domain"

	"go.uber.org/zap"
)

const (
	CoinPriceTTL = 5 * time.Minute
	AssetListTTL = 10 * time.Minute
)

// QuoteMirror persists quotes outside the process, e.g. in Redis.
type QuoteMirror interface {
	Save(ctx context.Context, key string, quote domain.PriceQuote, ttl time.Duration) error
	Load(ctx context.Context, key string) (domain.PriceQuote, bool, error)
}

// PriceCache holds quotes for ttl, measured against now.
type PriceCache struct {
	ttl    time.Duration
	now    func() time.Time
	mirror QuoteMirror
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]domain.PriceQuote
}

func NewPriceCache(ttl time.Duration, now func() time.Time, mirror QuoteMirror, logger *zap.Logger) *PriceCache {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceCache{
		ttl:     ttl,
		now:     now,
		mirror:  mirror,
		logger:  logger.Named("price-cache"),
		entries: make(map[string]domain.PriceQuote),
	}
}

func cacheKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get returns a quote younger than the ttl.
func (c *PriceCache) Get(ctx context.Context, key string) (domain.PriceQuote, bool) {
	key = cacheKey(key)
	now := c.now()

	c.mu.Lock()
	quote, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.fresh(quote, now) {
		return quote, true
	}

	if c.mirror == nil {
		return domain.PriceQuote{}, false
	}
	quote, ok, err := c.mirror.Load(ctx, key)
	if err != nil {
		c.logger.Warn("quote mirror read failed", zap.String("key", key), zap.Error(err))
		return domain.PriceQuote{}, false
	}
	if !ok || !c.fresh(quote, now) {
		return domain.PriceQuote{}, false
	}

	c.mu.Lock()
	c.entries[key] = quote
	c.mu.Unlock()
	return quote, true
}

func (c *PriceCache) Put(ctx context.Context, key string, price float64) domain.PriceQuote {
	key = cacheKey(key)
	quote := domain.PriceQuote{UnitPriceUSD: price, FetchedAt: c.now()}

	c.mu.Lock()
	c.entries[key] = quote
	c.mu.Unlock()

	if c.mirror != nil {
		if err := c.mirror.Save(ctx, key, quote, c.ttl); err != nil {
			c.logger.Warn("quote mirror write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return quote
}

func (c *PriceCache) fresh(quote domain.PriceQuote, now time.Time) bool {
	return now.Sub(quote.FetchedAt) < c.ttl
}
