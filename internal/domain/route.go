package domain

import "encoding/json"

// Route source labels, in the order sources are declared per network.
// The optimizer's tie-break follows this declaration order.
const (
	SourceJupiter   = "jupiter"
	SourceOneInch   = "1inch"
	SourceZeroEx    = "0x"
	SourceThorchain = "thorchain"
)

// Route is a normalized candidate trade path returned by an upstream
// liquidity source. Routes from different sources within the same
// NetworkClass are comparable only by AmountOut.
type Route struct {
	Network NetworkClass `json:"network"`
	Source  string       `json:"source"`

	// AmountOut is the expected output amount in the destination asset's
	// smallest unit, kept as a decimal string so values beyond 2^53 survive
	// JSON round-trips. Comparison happens via big.Int, never floats.
	AmountOut string `json:"amountOut"`

	// PriceImpact is the fractional output degradation (0.01 == 1%).
	// Upstreams reporting percent values are converted at the client
	// boundary; sources that do not report impact leave it at 0.
	PriceImpact float64 `json:"priceImpact"`

	// Payload carries upstream-specific data needed later to build a
	// transaction. It is opaque to everything but the producing client.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Bitcoin-style routes carry a deposit address and memo instead of a
	// buildable transaction.
	InboundAddress string          `json:"inboundAddress,omitempty"`
	Memo           string          `json:"memo,omitempty"`
	Fees           json.RawMessage `json:"fees,omitempty"`
}
