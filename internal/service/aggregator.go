package service

import (
	"context"
	"errors"
	"fmt"

	"tron-balance-bot/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrFetchFailed = errors.New("balance fetch failed")

type Pricer interface {
	NativePrice(ctx context.Context) float64
	PriceOfToken(ctx context.Context, token domain.TokenBalance) float64
}

// BalanceAggregator turns a fetch result into a USD valuation. It never
// persists anything.
type BalanceAggregator struct {
	tracer trace.Tracer
	pricer Pricer
}

func NewBalanceAggregator(tracer trace.Tracer, pricer Pricer) *BalanceAggregator {
	return &BalanceAggregator{tracer: tracer, pricer: pricer}
}

// Evaluate values fetch and compares it with previous, which is nil when the
// wallet has never been valued.
func (a *BalanceAggregator) Evaluate(ctx context.Context, fetch domain.FetchResult, previous *float64) (*domain.ValuationResult, error) {
	ctx, span := a.tracer.Start(ctx, "balance-aggregator.evaluate")
	defer span.End()

	if !fetch.Success {
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, fetch.Error)
	}

	result := &domain.ValuationResult{NativeBalance: fetch.NativeCoinBalance}

	if fetch.NativeCoinBalance > 0 {
		result.NativePrice = a.pricer.NativePrice(ctx)
		if result.NativePrice > 0 {
			result.TotalUSD += fetch.NativeCoinBalance * result.NativePrice
		}
	}

	for _, token := range fetch.Tokens {
		price := a.pricer.PriceOfToken(ctx, token)
		if price <= 0 {
			continue
		}
		value := token.Balance * price
		result.TotalUSD += value
		result.PerToken = append(result.PerToken, domain.TokenValuation{
			Token:     token,
			UnitPrice: price,
			ValueUSD:  value,
		})
	}

	applyDelta(result, previous)
	span.SetAttributes(attribute.Float64("valuation.total_usd", result.TotalUSD), attribute.Int("valuation.priced_tokens", len(result.PerToken)))
	return result, nil
}

func applyDelta(result *domain.ValuationResult, previous *float64) {
	if previous == nil {
		result.IsFirstValuation = true
		return
	}
	prev := *previous
	delta := result.TotalUSD - prev
	result.PreviousTotalUSD = &prev
	result.DeltaUSD = &delta
	if prev > 0 {
		pct := delta / prev * 100
		result.DeltaPercent = &pct
	}
}
