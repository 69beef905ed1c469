// Package model defines the common schema shared by both chains.
package model

import (
	"fmt"
	"strings"
)

// Network identifies one of the ingested ledgers.
type Network string

var (
	// BTC is the proof-of-work, UTXO-style chain.
	BTC Network = "BTC"
	// ETH is the account-based chain.
	ETH Network = "ETH"
)

// ParseNetwork validates a network name, case-insensitively.
func ParseNetwork(s string) (Network, error) {
	switch Network(strings.ToUpper(strings.TrimSpace(s))) {
	case BTC:
		return BTC, nil
	case ETH:
		return ETH, nil
	default:
		return "", fmt.Errorf("unsupported network %q", s)
	}
}

func (n Network) String() string {
	return string(n)
}
