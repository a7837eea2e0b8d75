package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"tron-balance-bot/internal/domain"
	"tron-balance-bot/internal/metrics"
	"tron-balance-bot/internal/provider"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const rateLimitCooldown = 60 * time.Second

type CoinPriceSource interface {
	SimplePrice(ctx context.Context, coinID string) (float64, bool, error)
	Search(ctx context.Context, query string) (string, bool, error)
}

type PriceResolverOptions struct {
	// FallbackEnabled lets token lookups continue to CoinGecko and pegs
	// when the bulk asset list has no price.
	FallbackEnabled bool
	Known           *domain.KnownTokens
	Now             func() time.Time
}

// PriceResolver answers USD unit prices. A zero price means "leave the token
// out of the valuation" and is never an error.
type PriceResolver struct {
	tracer   trace.Tracer
	logger   *zap.Logger
	assets   *AssetListCache
	coins    CoinPriceSource
	cache    *PriceCache
	known    *domain.KnownTokens
	fallback bool
	now      func() time.Time

	mu            sync.Mutex
	cooldownUntil time.Time
}

func NewPriceResolver(
	tracer trace.Tracer,
	logger *zap.Logger,
	assets *AssetListCache,
	coins CoinPriceSource,
	cache *PriceCache,
	opts PriceResolverOptions,
) *PriceResolver {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Known == nil {
		opts.Known = domain.DefaultKnownTokens()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceResolver{
		tracer:   tracer,
		logger:   logger.Named("price-resolver"),
		assets:   assets,
		coins:    coins,
		cache:    cache,
		known:    opts.Known,
		fallback: opts.FallbackEnabled,
		now:      opts.Now,
	}
}

// PriceOf prices a token by contract and optional symbol.
func (r *PriceResolver) PriceOf(ctx context.Context, contract, symbol string) float64 {
	return r.PriceOfToken(ctx, domain.TokenBalance{ContractAddress: contract, Symbol: symbol})
}

func (r *PriceResolver) PriceOfToken(ctx context.Context, token domain.TokenBalance) float64 {
	ctx, span := r.tracer.Start(ctx, "price-resolver.price-of")
	defer span.End()
	span.SetAttributes(attribute.String("token.contract", token.ContractAddress), attribute.String("token.symbol", token.Symbol))

	if price, ok := r.fromAssetList(ctx, token.ContractAddress, token.Symbol, token.DisplayName); ok {
		return price
	}
	if !r.fallback {
		metrics.PriceLookups.WithLabelValues(metrics.SourceNone).Inc()
		return 0
	}
	return r.general(ctx, token.ContractAddress, token.Symbol)
}

// NativePrice only consults the bulk asset list; without it the native coin
// is left out of valuations.
func (r *PriceResolver) NativePrice(ctx context.Context) float64 {
	ctx, span := r.tracer.Start(ctx, "price-resolver.native-price")
	defer span.End()

	index, err := r.assets.Index(ctx)
	if err != nil {
		r.logger.Warn("asset list unavailable for native price", zap.Error(err))
		return 0
	}
	price := index.NativePrice()
	if price > 0 {
		metrics.PriceLookups.WithLabelValues(metrics.SourceAssetList).Inc()
	}
	return price
}

// QuoteBySymbol is a general quote for ad-hoc lookups: the bulk list first,
// then CoinGecko by canonical id, then CoinGecko search.
func (r *PriceResolver) QuoteBySymbol(ctx context.Context, symbol string) float64 {
	ctx, span := r.tracer.Start(ctx, "price-resolver.quote-by-symbol")
	defer span.End()

	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return 0
	}
	if price, ok := r.fromAssetList(ctx, "", symbol, ""); ok {
		return price
	}
	return r.general(ctx, "", symbol)
}

func (r *PriceResolver) fromAssetList(ctx context.Context, contract, symbol, name string) (float64, bool) {
	index, err := r.assets.Index(ctx)
	if err != nil {
		r.logger.Warn("asset list unavailable", zap.Error(err))
		return 0, false
	}
	price, ok := index.Lookup(contract, symbol, name)
	if ok {
		metrics.PriceLookups.WithLabelValues(metrics.SourceAssetList).Inc()
	}
	return price, ok
}

func (r *PriceResolver) general(ctx context.Context, contract, symbol string) float64 {
	usable := symbol != "" && !strings.EqualFold(symbol, "UNKNOWN")
	known, isKnown := r.known.Lookup(contract, symbol)

	if isKnown || usable {
		if price, ok := r.coinPrice(ctx, r.known.CoinID(contract, symbol)); ok {
			return price
		}
	}

	if usable {
		if price, ok := r.searchPrice(ctx, symbol); ok {
			return price
		}
	}

	if r.fallback && isKnown && known.PegUSD > 0 {
		metrics.PriceLookups.WithLabelValues(metrics.SourcePeg).Inc()
		return known.PegUSD
	}

	metrics.PriceLookups.WithLabelValues(metrics.SourceNone).Inc()
	return 0
}

func (r *PriceResolver) coinPrice(ctx context.Context, coinID string) (float64, bool) {
	if coinID == "" {
		return 0, false
	}
	if quote, ok := r.cache.Get(ctx, coinID); ok {
		metrics.PriceLookups.WithLabelValues(metrics.SourceCoinCache).Inc()
		return quote.UnitPriceUSD, true
	}
	if r.coolingDown() {
		return 0, false
	}

	price, ok, err := r.coins.SimplePrice(ctx, coinID)
	if err != nil {
		r.handleCoinError(coinID, err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	r.cache.Put(ctx, coinID, price)
	metrics.PriceLookups.WithLabelValues(metrics.SourceCoinGecko).Inc()
	return price, true
}

func (r *PriceResolver) searchPrice(ctx context.Context, symbol string) (float64, bool) {
	if r.coolingDown() {
		return 0, false
	}
	coinID, ok, err := r.coins.Search(ctx, symbol)
	if err != nil {
		r.handleCoinError(symbol, err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	price, ok := r.coinPrice(ctx, coinID)
	if ok {
		metrics.PriceLookups.WithLabelValues(metrics.SourceSearch).Inc()
	}
	return price, ok
}

func (r *PriceResolver) handleCoinError(key string, err error) {
	if errors.Is(err, provider.ErrRateLimited) {
		r.mu.Lock()
		r.cooldownUntil = r.now().Add(rateLimitCooldown)
		r.mu.Unlock()
		r.logger.Warn("coingecko rate limited, pausing lookups", zap.String("key", key), zap.Duration("cooldown", rateLimitCooldown))
		return
	}
	r.logger.Warn("coingecko lookup failed", zap.String("key", key), zap.Error(err))
}

func (r *PriceResolver) coolingDown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Before(r.cooldownUntil)
}
