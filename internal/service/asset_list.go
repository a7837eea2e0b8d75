package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"tron-balance-bot/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type AssetPriceSource interface {
	FetchAssetPrices(ctx context.Context) ([]domain.AssetPrice, error)
}

// AssetIndex is the bulk asset list keyed by id, uppercased abbreviation and
// uppercased name. Later entries overwrite earlier ones on key collisions.
type AssetIndex struct {
	byKey  map[string]domain.AssetPrice
	assets []domain.AssetPrice
}

func NewAssetIndex(assets []domain.AssetPrice) *AssetIndex {
	idx := &AssetIndex{
		byKey:  make(map[string]domain.AssetPrice, len(assets)*3),
		assets: assets,
	}
	for _, a := range assets {
		if a.ID != "" {
			idx.byKey[a.ID] = a
		}
		if a.Abbr != "" {
			idx.byKey[strings.ToUpper(a.Abbr)] = a
		}
		if a.Name != "" {
			idx.byKey[strings.ToUpper(a.Name)] = a
		}
	}
	return idx
}

func (i *AssetIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.assets)
}

// Lookup tries the contract, the symbol, the display name, then a scan of
// every asset's abbreviation and name. Only positive prices count as found.
func (i *AssetIndex) Lookup(contract, symbol, name string) (float64, bool) {
	if i == nil {
		return 0, false
	}
	upperSymbol := strings.ToUpper(strings.TrimSpace(symbol))
	upperName := strings.ToUpper(strings.TrimSpace(name))

	for _, key := range []string{contract, upperSymbol, upperName} {
		if key == "" {
			continue
		}
		if a, ok := i.byKey[key]; ok && a.PriceInUSD > 0 {
			return a.PriceInUSD, true
		}
	}

	for _, want := range []string{upperSymbol, upperName} {
		if want == "" {
			continue
		}
		for _, a := range i.assets {
			if a.PriceInUSD <= 0 {
				continue
			}
			if strings.ToUpper(a.Abbr) == want || strings.ToUpper(a.Name) == want {
				return a.PriceInUSD, true
			}
		}
	}
	return 0, false
}

// NativePrice looks up the native coin under its sentinel id, then as TRX.
func (i *AssetIndex) NativePrice() float64 {
	if i == nil {
		return 0
	}
	for _, key := range []string{domain.NativeSentinel, "TRX"} {
		if a, ok := i.byKey[key]; ok && a.PriceInUSD > 0 {
			return a.PriceInUSD
		}
	}
	return 0
}

// AssetListCache keeps one copy of the bulk asset list for the whole process.
// Concurrent refreshes collapse into a single upstream call.
type AssetListCache struct {
	tracer trace.Tracer
	logger *zap.Logger
	source AssetPriceSource
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group

	mu        sync.RWMutex
	index     *AssetIndex
	fetchedAt time.Time
}

func NewAssetListCache(tracer trace.Tracer, logger *zap.Logger, source AssetPriceSource, now func() time.Time) *AssetListCache {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssetListCache{
		tracer: tracer,
		logger: logger.Named("asset-list"),
		source: source,
		ttl:    AssetListTTL,
		now:    now,
	}
}

// Index returns the cached list, refreshing it once the ttl has passed. When a
// refresh fails the previous list is served until the next attempt.
func (c *AssetListCache) Index(ctx context.Context) (*AssetIndex, error) {
	c.mu.RLock()
	index, fetchedAt := c.index, c.fetchedAt
	c.mu.RUnlock()
	if index != nil && c.now().Sub(fetchedAt) < c.ttl {
		return index, nil
	}

	v, err, _ := c.group.Do("assets", func() (interface{}, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		if index != nil {
			c.logger.Warn("asset list refresh failed, serving stale copy", zap.Error(err))
			return index, nil
		}
		return nil, err
	}
	return v.(*AssetIndex), nil
}

// Refresh downloads the list regardless of its age. On failure the cached copy
// is kept and the error returned.
func (c *AssetListCache) Refresh(ctx context.Context) (*AssetIndex, error) {
	v, err, _ := c.group.Do("assets", func() (interface{}, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*AssetIndex), nil
}

func (c *AssetListCache) refresh(ctx context.Context) (*AssetIndex, error) {
	ctx, span := c.tracer.Start(ctx, "asset-list.refresh")
	defer span.End()

	assets, err := c.source.FetchAssetPrices(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	index := NewAssetIndex(assets)

	c.mu.Lock()
	c.index = index
	c.fetchedAt = c.now()
	c.mu.Unlock()

	c.logger.Debug("asset list refreshed", zap.Int("assets", len(assets)))
	return index, nil
}
