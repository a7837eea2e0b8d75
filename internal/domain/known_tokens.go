package domain

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed known_tokens.yaml
var knownTokensYAML []byte

type KnownToken struct {
	Contract    string  `yaml:"contract"`
	Symbol      string  `yaml:"symbol"`
	CoinGeckoID string  `yaml:"coingecko_id"`
	PegUSD      float64 `yaml:"peg_usd"`
}

// KnownTokens indexes a fixed token table by contract and by uppercased symbol.
type KnownTokens struct {
	byContract map[string]KnownToken
	bySymbol   map[string]KnownToken
}

func ParseKnownTokens(data []byte) (*KnownTokens, error) {
	var doc struct {
		Tokens []KnownToken `yaml:"tokens"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse known tokens: %w", err)
	}
	kt := &KnownTokens{
		byContract: make(map[string]KnownToken, len(doc.Tokens)),
		bySymbol:   make(map[string]KnownToken, len(doc.Tokens)),
	}
	for _, t := range doc.Tokens {
		if t.Contract != "" {
			kt.byContract[t.Contract] = t
		}
		if t.Symbol != "" {
			kt.bySymbol[strings.ToUpper(t.Symbol)] = t
		}
	}
	return kt, nil
}

// DefaultKnownTokens returns the embedded table.
func DefaultKnownTokens() *KnownTokens {
	kt, err := ParseKnownTokens(knownTokensYAML)
	if err != nil {
		panic(err)
	}
	return kt
}

func (k *KnownTokens) Lookup(contract, symbol string) (KnownToken, bool) {
	if k == nil {
		return KnownToken{}, false
	}
	if t, ok := k.byContract[contract]; ok && contract != "" {
		return t, true
	}
	if symbol == "" {
		return KnownToken{}, false
	}
	t, ok := k.bySymbol[strings.ToUpper(symbol)]
	return t, ok
}

// CoinID returns the generic price-source id for a token, defaulting to the lowercased symbol.
func (k *KnownTokens) CoinID(contract, symbol string) string {
	if t, ok := k.Lookup(contract, symbol); ok && t.CoinGeckoID != "" {
		return t.CoinGeckoID
	}
	return strings.ToLower(strings.TrimSpace(symbol))
}
