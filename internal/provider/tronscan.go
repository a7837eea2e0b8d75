package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tron-balance-bot/internal/domain"

	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultTronScanBaseURL = "https://apilist.tronscan.org"

// TronScan exposes the same holdings through several endpoints, each of which
// misses tokens the others report.
var tronScanTokenEndpoints = []string{
	"/api/account/tokens",
	"/api/account/token-balance",
	"/api/account",
}

const tronScanAssetListPath = "/api/getAssetWithPriceList"

// TronScanProvider reads token lists and the asset price list from TronScan.
type TronScanProvider struct {
	client   *http.Client
	baseURL  string
	tracer   trace.Tracer
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewTronScanProvider(tracer trace.Tracer, baseURL string, timeout time.Duration) *TronScanProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultTronScanBaseURL
	}
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(tronScanTokenEndpoints)+1)
	for _, endpoint := range tronScanTokenEndpoints {
		breakers[endpoint] = newBreaker("tronscan" + endpoint)
	}
	breakers[tronScanAssetListPath] = newBreaker("tronscan" + tronScanAssetListPath)

	return &TronScanProvider{
		client:   &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(baseURL, "/"),
		tracer:   tracer,
		breakers: breakers,
	}
}

// TokenEndpoints lists the token-list endpoints in merge order.
func (p *TronScanProvider) TokenEndpoints() []string {
	out := make([]string, len(tronScanTokenEndpoints))
	copy(out, tronScanTokenEndpoints)
	return out
}

// FetchTokens returns the positive token balances reported by one endpoint.
func (p *TronScanProvider) FetchTokens(ctx context.Context, endpoint, address string) ([]domain.TokenBalance, error) {
	ctx, span := p.tracer.Start(ctx, "tronscan.fetch-tokens")
	defer span.End()
	span.SetAttributes(attribute.String("tronscan.endpoint", endpoint), attribute.String("wallet.address", address))

	breaker, ok := p.breakers[endpoint]
	if !ok {
		return nil, fmt.Errorf("unknown tronscan endpoint %q", endpoint)
	}

	target := p.baseURL + endpoint + "?address=" + url.QueryEscape(address)
	out, err := breaker.Execute(func() (interface{}, error) {
		body, err := getJSON(ctx, p.client, "TronScan", target, nil)
		if err != nil {
			return nil, err
		}
		if !gjson.ValidBytes(body) {
			return nil, fmt.Errorf("decode tronscan payload from %s: invalid json", endpoint)
		}
		return parseTronScanTokens(gjson.ParseBytes(body)), nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out.([]domain.TokenBalance), nil
}

func parseTronScanTokens(doc gjson.Result) []domain.TokenBalance {
	var list gjson.Result
	for _, key := range []string{"data", "trc20token_balances", "tokens"} {
		if v := doc.Get(key); v.IsArray() {
			list = v
			break
		}
	}

	var tokens []domain.TokenBalance
	list.ForEach(func(_, entry gjson.Result) bool {
		id := firstString(entry, "tokenId", "contract_address", "token_address")
		if id == domain.NativeSentinel {
			// native coin is valued from the account balance
			return true
		}
		decimals := int32(defaultTokenDecimals)
		for _, key := range []string{"tokenDecimal", "decimals"} {
			if v := entry.Get(key); v.Exists() && v.Int() > 0 {
				decimals = int32(v.Int())
				break
			}
		}
		tok, ok := newTokenBalance(
			id,
			firstString(entry, "balance", "balanceValue"),
			decimals,
			stringOrDefault(firstString(entry, "tokenAbbr", "symbol", "tokenName"), "UNKNOWN"),
			stringOrDefault(firstString(entry, "tokenName", "name"), "Unknown Token"),
			domain.SourceSecondary,
		)
		if ok {
			tokens = append(tokens, tok)
		}
		return true
	})
	return tokens
}

// FetchAssetPrices downloads the full asset list with USD prices.
func (p *TronScanProvider) FetchAssetPrices(ctx context.Context) ([]domain.AssetPrice, error) {
	ctx, span := p.tracer.Start(ctx, "tronscan.fetch-asset-prices")
	defer span.End()

	out, err := p.breakers[tronScanAssetListPath].Execute(func() (interface{}, error) {
		body, err := getJSON(ctx, p.client, "TronScan", p.baseURL+tronScanAssetListPath, nil)
		if err != nil {
			return nil, err
		}
		data := gjson.GetBytes(body, "data")
		if !data.IsArray() {
			return nil, fmt.Errorf("decode tronscan asset list: missing data array")
		}
		assets := make([]domain.AssetPrice, 0, len(data.Array()))
		data.ForEach(func(_, entry gjson.Result) bool {
			assets = append(assets, domain.AssetPrice{
				ID:         entry.Get("id").String(),
				Abbr:       entry.Get("abbr").String(),
				Name:       entry.Get("name").String(),
				PriceInUSD: entry.Get("priceInUsd").Float(),
			})
			return true
		})
		return assets, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out.([]domain.AssetPrice), nil
}

func firstString(entry gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(entry.Get(key).String()); v != "" {
			return v
		}
	}
	return ""
}
