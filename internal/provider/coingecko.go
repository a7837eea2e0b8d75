package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider fetches spot prices and coin ids from the CoinGecko free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider shares limiter with every other caller of the same API.
func NewCoinGeckoProvider(tracer trace.Tracer, baseURL string, limiter *RateLimiter, timeout time.Duration) *CoinGeckoProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	if limiter == nil {
		limiter = NewRateLimiter(DefaultCoinGeckoInterval)
	}
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		limiter: limiter,
	}
}

// SimplePrice returns the USD price of coinID. ok is false when the id is unknown
// or has no USD quote.
func (p *CoinGeckoProvider) SimplePrice(ctx context.Context, coinID string) (price float64, ok bool, err error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.simple-price")
	defer span.End()
	span.SetAttributes(attribute.String("coingecko.id", coinID))

	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", p.baseURL, url.QueryEscape(coinID))
	body, err := p.doRequest(ctx, u)
	if err != nil {
		return 0, false, fmt.Errorf("fetch price for %s: %w", coinID, err)
	}

	// Response shape: {"tron": {"usd": 0.2412}}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, false, fmt.Errorf("parse price for %s: %w", coinID, err)
	}
	usd, found := raw[coinID]["usd"]
	if !found || usd <= 0 {
		return 0, false, nil
	}
	return usd, true, nil
}

// Search returns the id of the first coin matching query.
func (p *CoinGeckoProvider) Search(ctx context.Context, query string) (string, bool, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.search")
	defer span.End()
	span.SetAttributes(attribute.String("coingecko.query", query))

	body, err := p.doRequest(ctx, p.baseURL+"/search?query="+url.QueryEscape(query))
	if err != nil {
		return "", false, fmt.Errorf("search %s: %w", query, err)
	}

	var raw struct {
		Coins []struct {
			ID     string `json:"id"`
			Symbol string `json:"symbol"`
		} `json:"coins"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", false, fmt.Errorf("parse search for %s: %w", query, err)
	}
	if len(raw.Coins) == 0 || raw.Coins[0].ID == "" {
		return "", false, nil
	}
	return raw.Coins[0].ID, true, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, u string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return getJSON(ctx, p.client, "CoinGecko", u, nil)
}
