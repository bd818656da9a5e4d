package router

import (
	"fmt"
	"strings"

	"swapgate/internal/domain"
	"swapgate/internal/validate"
)

// Symbol literals recognized before any address-shape heuristic runs.
var symbolNetworks = map[string]domain.NetworkClass{
	"SOL": domain.NetworkSolana,
	"ETH": domain.NetworkEVM,
	"BTC": domain.NetworkBitcoin,
}

// Classify derives the settlement network from the source asset
// identifier. A symbol literal match beats the address-shape heuristics;
// the heuristics themselves are mutually exclusive by construction (a
// 0x-prefixed value can never decode as base58). Fails with
// UnsupportedAsset when nothing matches.
func Classify(fromID string) (domain.NetworkClass, error) {
	id := strings.TrimSpace(fromID)

	if network, ok := symbolNetworks[id]; ok {
		return network, nil
	}
	if validate.IsEVMAddress(id) {
		return domain.NetworkEVM, nil
	}
	if validate.IsSolanaAddress(id) {
		return domain.NetworkSolana, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedAsset, fromID)
}
