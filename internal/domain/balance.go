package domain

import "time"

type SourceTag string

const (
	SourcePrimary   SourceTag = "TronGrid"
	SourceSecondary SourceTag = "TronScan"
)

// NativeSentinel identifies the native coin in the bulk asset list.
const NativeSentinel = "_"

type TokenBalance struct {
	ContractAddress string    `json:"contract_address"`
	Symbol          string    `json:"symbol"`
	DisplayName     string    `json:"name"`
	Decimals        int32     `json:"decimals"`
	RawUnits        string    `json:"raw_units"`
	Balance         float64   `json:"balance"`
	Source          SourceTag `json:"source"`
}

// FetchResult is built once per fetch and consumed by the aggregator.
type FetchResult struct {
	Success           bool           `json:"success"`
	Chain             ChainType      `json:"chain"`
	NativeCoinBalance float64        `json:"native_balance"`
	Tokens            []TokenBalance `json:"tokens"`
	Error             string         `json:"error,omitempty"`
}

func FailedFetch(chain ChainType, msg string) FetchResult {
	return FetchResult{Success: false, Chain: chain, Error: msg}
}

// TokenBy returns the token with the given contract, if present.
func (r FetchResult) TokenBy(contract string) (TokenBalance, bool) {
	for _, t := range r.Tokens {
		if t.ContractAddress == contract {
			return t, true
		}
	}
	return TokenBalance{}, false
}

type PriceQuote struct {
	UnitPriceUSD float64
	FetchedAt    time.Time
}

// AssetPrice is one entry of the bulk asset-price list.
type AssetPrice struct {
	ID         string  `json:"id"`
	Abbr       string  `json:"abbr"`
	Name       string  `json:"name"`
	PriceInUSD float64 `json:"priceInUsd"`
}

type TokenValuation struct {
	Token     TokenBalance `json:"token"`
	UnitPrice float64      `json:"unit_price"`
	ValueUSD  float64      `json:"value_usd"`
}

type ValuationResult struct {
	TotalUSD         float64          `json:"total_usd"`
	NativeBalance    float64          `json:"native_balance"`
	NativePrice      float64          `json:"native_price"`
	PerToken         []TokenValuation `json:"per_token"`
	PreviousTotalUSD *float64         `json:"previous_total_usd,omitempty"`
	DeltaUSD         *float64         `json:"delta_usd,omitempty"`
	DeltaPercent     *float64         `json:"delta_percent,omitempty"`
	IsFirstValuation bool             `json:"is_first_valuation"`
}
