package domain

import "strings"

// Classify maps an address to the chain it belongs to. First match wins.
func Classify(address string) ChainType {
	a := strings.TrimSpace(address)
	switch {
	case strings.HasPrefix(a, "T") && len(a) == 34:
		return ChainTron
	case strings.HasPrefix(a, "0x") && len(a) == 42:
		return ChainEthereum
	case strings.HasPrefix(a, "1"), strings.HasPrefix(a, "3"), strings.HasPrefix(a, "bc1"):
		return ChainBitcoin
	default:
		return ChainUnknown
	}
}
