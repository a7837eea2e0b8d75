package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"tron-balance-bot/internal/domain"
)

type stubPricer struct {
	native float64
	prices map[string]float64
	calls  int
}

func (p *stubPricer) NativePrice(ctx context.Context) float64 {
	return p.native
}

func (p *stubPricer) PriceOfToken(ctx context.Context, token domain.TokenBalance) float64 {
	p.calls++
	return p.prices[token.ContractAddress]
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluateEndToEnd(t *testing.T) {
	pricer := &stubPricer{native: 0.10, prices: map[string]float64{"C1": 2.00}}
	agg := NewBalanceAggregator(testTracer, pricer)

	fetch := domain.FetchResult{
		Success:           true,
		Chain:             domain.ChainTron,
		NativeCoinBalance: 0.001,
		Tokens:            []domain.TokenBalance{token("C1", 50, domain.SourceSecondary)},
	}
	res, err := agg.Evaluate(context.Background(), fetch, floatPtr(80))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(res.TotalUSD, 100.0001) {
		t.Fatalf("expected total 100.0001, got %v", res.TotalUSD)
	}
	if res.DeltaUSD == nil || !approx(*res.DeltaUSD, 20.0001) {
		t.Fatalf("expected delta 20.0001, got %v", res.DeltaUSD)
	}
	if res.DeltaPercent == nil || math.Abs(*res.DeltaPercent-25.0001) > 0.0001 {
		t.Fatalf("expected delta percent ~25.0001, got %v", res.DeltaPercent)
	}
	if res.IsFirstValuation {
		t.Fatal("expected a repeat valuation")
	}
	if len(res.PerToken) != 1 || res.PerToken[0].ValueUSD != 100 || res.PerToken[0].UnitPrice != 2 {
		t.Fatalf("unexpected breakdown %+v", res.PerToken)
	}
}

func TestEvaluateFirstValuation(t *testing.T) {
	agg := NewBalanceAggregator(testTracer, &stubPricer{native: 0.1})

	res, err := agg.Evaluate(context.Background(), domain.FetchResult{Success: true, NativeCoinBalance: 100}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsFirstValuation || res.DeltaUSD != nil || res.DeltaPercent != nil || res.PreviousTotalUSD != nil {
		t.Fatalf("expected first valuation without deltas, got %+v", res)
	}
	if !approx(res.TotalUSD, 10) {
		t.Fatalf("expected 10, got %v", res.TotalUSD)
	}
}

func TestEvaluatePreviousZero(t *testing.T) {
	agg := NewBalanceAggregator(testTracer, &stubPricer{native: 1})

	res, err := agg.Evaluate(context.Background(), domain.FetchResult{Success: true, NativeCoinBalance: 5}, floatPtr(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DeltaUSD == nil || *res.DeltaUSD != 5 {
		t.Fatalf("expected delta 5, got %v", res.DeltaUSD)
	}
	if res.DeltaPercent != nil {
		t.Fatalf("expected no percentage against zero, got %v", *res.DeltaPercent)
	}
	if res.IsFirstValuation {
		t.Fatal("a zero previous total is still a previous valuation")
	}
}

func TestEvaluateSkipsUnpricedTokens(t *testing.T) {
	pricer := &stubPricer{prices: map[string]float64{"C1": 3}}
	agg := NewBalanceAggregator(testTracer, pricer)

	fetch := domain.FetchResult{
		Success:           true,
		NativeCoinBalance: 1000,
		Tokens: []domain.TokenBalance{
			token("C0", 1000, domain.SourceSecondary),
			token("C1", 2, domain.SourceSecondary),
		},
	}
	res, err := agg.Evaluate(context.Background(), fetch, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalUSD != 6 {
		t.Fatalf("expected only C1 to count, got %v", res.TotalUSD)
	}
	if len(res.PerToken) != 1 || res.PerToken[0].Token.ContractAddress != "C1" {
		t.Fatalf("unexpected breakdown %+v", res.PerToken)
	}
	if res.NativePrice != 0 {
		t.Fatalf("expected unpriced native coin, got %v", res.NativePrice)
	}
}

func TestEvaluateFailedFetch(t *testing.T) {
	pricer := &stubPricer{}
	agg := NewBalanceAggregator(testTracer, pricer)

	_, err := agg.Evaluate(context.Background(), domain.FailedFetch(domain.ChainTron, "wallet not found"), nil)
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if pricer.calls != 0 {
		t.Fatal("expected no price lookups for a failed fetch")
	}
}
