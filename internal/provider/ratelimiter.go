package provider

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCoinGeckoInterval is the minimum spacing between calls to the free CoinGecko tier.
const DefaultCoinGeckoInterval = 1200 * time.Millisecond

// RateLimiter spaces calls at least interval apart across all callers.
type RateLimiter struct {
	limiter *rate.Limiter
}

func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the caller's turn or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
