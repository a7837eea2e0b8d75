package domain

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tron := "T" + strings.Repeat("A", 33)
	eth := "0x" + strings.Repeat("a", 40)

	tests := []struct {
		addr     string
		expected ChainType
	}{
		{tron, ChainTron},
		{"  " + tron + "\n", ChainTron},
		{eth, ChainEthereum},
		{"1BoatSLRHtKNngkdXEeobR76b53LETtpyT", ChainBitcoin},
		{"3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", ChainBitcoin},
		{"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", ChainBitcoin},
		{"T" + strings.Repeat("A", 32), ChainUnknown},
		{"0x1234", ChainUnknown},
		{"", ChainUnknown},
		{"hello", ChainUnknown},
	}
	for _, tc := range tests {
		if got := Classify(tc.addr); got != tc.expected {
			t.Fatalf("%q expected %s, got %s", tc.addr, tc.expected, got)
		}
	}
}

func TestClassifyRealTronAddress(t *testing.T) {
	if got := Classify("TBCKdBWiWG41oSSq4K4q5zcp56ya1V8xSy"); got != ChainTron {
		t.Fatalf("expected TRON, got %s", got)
	}
}

func TestDefaultKnownTokens(t *testing.T) {
	kt := DefaultKnownTokens()

	usdt, ok := kt.Lookup(USDTContract, "")
	if !ok || usdt.CoinGeckoID != "tether" || usdt.PegUSD != 1 {
		t.Fatalf("unexpected usdt entry: %+v", usdt)
	}
	if got := kt.CoinID("", "wbtc"); got != "wrapped-bitcoin" {
		t.Fatalf("expected wrapped-bitcoin, got %s", got)
	}
	if got := kt.CoinID("Tunknown", "SUN"); got != "sun" {
		t.Fatalf("expected lowercased symbol fallback, got %s", got)
	}
	if got := kt.CoinID(NativeSentinel, ""); got != "tron" {
		t.Fatalf("expected tron for native sentinel, got %s", got)
	}
}

func TestParseKnownTokensRejectsBadYAML(t *testing.T) {
	if _, err := ParseKnownTokens([]byte("tokens: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFetchResultTokenBy(t *testing.T) {
	r := FetchResult{Success: true, Tokens: []TokenBalance{{ContractAddress: "C1", Balance: 2}}}
	if tok, ok := r.TokenBy("C1"); !ok || tok.Balance != 2 {
		t.Fatalf("expected C1 token, got %+v", tok)
	}
	if _, ok := r.TokenBy("c1"); ok {
		t.Fatal("contract lookup must be case-sensitive")
	}
}
