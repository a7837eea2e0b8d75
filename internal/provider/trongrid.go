package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tron-balance-bot/internal/domain"

	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTronGridBaseURL = "https://api.trongrid.io"
	tronNativeDecimals     = 6
	defaultTokenDecimals   = 6
)

// TronAccount is the primary-source view of an address.
type TronAccount struct {
	NativeRaw     string
	NativeBalance float64
	Tokens        []domain.TokenBalance
}

// TronGridProvider reads account records from the TronGrid v1 API.
type TronGridProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	breaker *gobreaker.CircuitBreaker
}

func NewTronGridProvider(tracer trace.Tracer, baseURL, apiKey string, timeout time.Duration) *TronGridProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultTronGridBaseURL
	}
	return &TronGridProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tracer:  tracer,
		breaker: newBreaker("trongrid"),
	}
}

// FetchAccount returns ErrAccountNotFound when the API knows nothing about the address.
func (p *TronGridProvider) FetchAccount(ctx context.Context, address string) (*TronAccount, error) {
	ctx, span := p.tracer.Start(ctx, "trongrid.fetch-account")
	defer span.End()
	span.SetAttributes(attribute.String("wallet.address", address))

	header := http.Header{}
	if p.apiKey != "" {
		header.Set("TRON-PRO-API-KEY", p.apiKey)
	}

	out, err := p.breaker.Execute(func() (interface{}, error) {
		body, err := getJSON(ctx, p.client, "TronGrid", p.baseURL+"/v1/accounts/"+address, header)
		if err != nil {
			return nil, err
		}
		return parseTronGridAccount(body)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out.(*TronAccount), nil
}

func parseTronGridAccount(body []byte) (*TronAccount, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode trongrid payload: invalid json")
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsArray() || len(data.Array()) == 0 {
		return nil, ErrAccountNotFound
	}
	account := data.Array()[0]

	nativeRaw := account.Get("balance").String()
	if nativeRaw == "" {
		nativeRaw = "0"
	}
	native, err := unitsToBalance(nativeRaw, tronNativeDecimals)
	if err != nil {
		return nil, err
	}

	result := &TronAccount{NativeRaw: nativeRaw, NativeBalance: native}
	account.Get("trc20").ForEach(func(_, entry gjson.Result) bool {
		result.Tokens = append(result.Tokens, tronGridTokens(entry)...)
		return true
	})
	return result, nil
}

// tronGridTokens accepts both the detailed {contract_address, balance, token_info}
// shape and the compact {"<contract>": "<raw>"} shape of trc20 entries.
func tronGridTokens(entry gjson.Result) []domain.TokenBalance {
	if contract := entry.Get("contract_address"); contract.Exists() {
		info := entry.Get("token_info")
		decimals := int32(defaultTokenDecimals)
		if d := info.Get("decimals"); d.Exists() && d.Int() > 0 {
			decimals = int32(d.Int())
		}
		tok, ok := newTokenBalance(
			contract.String(),
			entry.Get("balance").String(),
			decimals,
			stringOrDefault(info.Get("symbol").String(), "UNKNOWN"),
			stringOrDefault(info.Get("name").String(), "Unknown Token"),
			domain.SourcePrimary,
		)
		if !ok {
			return nil
		}
		return []domain.TokenBalance{tok}
	}

	var tokens []domain.TokenBalance
	entry.ForEach(func(key, value gjson.Result) bool {
		if tok, ok := newTokenBalance(key.String(), value.String(), defaultTokenDecimals, "UNKNOWN", "Unknown Token", domain.SourcePrimary); ok {
			tokens = append(tokens, tok)
		}
		return true
	})
	return tokens
}

// newTokenBalance drops entries without an id, with unparseable amounts or with
// a non-positive balance.
func newTokenBalance(contract, raw string, decimals int32, symbol, name string, source domain.SourceTag) (domain.TokenBalance, bool) {
	if contract == "" {
		return domain.TokenBalance{}, false
	}
	balance, err := unitsToBalance(raw, decimals)
	if err != nil || balance <= 0 {
		return domain.TokenBalance{}, false
	}
	return domain.TokenBalance{
		ContractAddress: contract,
		Symbol:          symbol,
		DisplayName:     name,
		Decimals:        decimals,
		RawUnits:        raw,
		Balance:         balance,
		Source:          source,
	}, true
}

func stringOrDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
