// Package validate gatekeeps inbound parameters before any upstream call.
// Validation is all-or-nothing: every offending field is collected and
// reported in a single ValidationError.
package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"swapgate/internal/domain"
	"swapgate/internal/fee"
)

// ParseAmount parses a request amount in smallest units. Signs, fractions,
// separators, and overflow all fail in one step: a violated integer
// invariant is a hard validation failure, never a rounding opportunity.
func ParseAmount(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: amount is required", domain.ErrInvalidAmount)
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a positive integer", domain.ErrInvalidAmount, raw)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}
	return n, nil
}

// Quote validates the query parameters of a quote request and returns the
// parsed amount. requireFrom is false for the Bitcoin endpoint, where the
// source asset is fixed to BTC.BTC.
func Quote(from, to, amountRaw, address string, requireFrom bool) (uint64, error) {
	var fields []string

	if requireFrom && strings.TrimSpace(from) == "" {
		fields = append(fields, "from")
	}
	if strings.TrimSpace(to) == "" {
		fields = append(fields, "to")
	}
	if strings.TrimSpace(address) == "" {
		fields = append(fields, "address")
	}
	amount, err := ParseAmount(amountRaw)
	if err != nil {
		fields = append(fields, "amount")
	}

	if len(fields) > 0 {
		return 0, &domain.ValidationError{Fields: fields}
	}
	return amount, nil
}

// SolanaRouteAmount extracts the embedded input amount from an opaque
// Jupiter route payload. Upstream payloads carry it under inAmount, amount,
// or inputAmount, as either a JSON string or number.
func SolanaRouteAmount(payload json.RawMessage) (uint64, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return 0, fmt.Errorf("%w: route payload is not an object", domain.ErrInvalidAmount)
	}

	for _, key := range []string{"inAmount", "amount", "inputAmount"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var asString string
		if err := json.Unmarshal(raw, &asString); err == nil {
			return ParseAmount(asString)
		}
		var asNumber uint64
		if err := json.Unmarshal(raw, &asNumber); err == nil && asNumber > 0 {
			return asNumber, nil
		}
		return 0, fmt.Errorf("%w: route payload field %q is not a positive integer", domain.ErrInvalidAmount, key)
	}
	return 0, fmt.Errorf("%w: route payload carries no input amount", domain.ErrInvalidAmount)
}

// ExecuteSolana validates a Solana execute request and returns the input
// amount embedded in the route payload.
func ExecuteSolana(routePayload json.RawMessage, userPublicKey string) (uint64, error) {
	var fields []string

	if len(routePayload) == 0 {
		fields = append(fields, "route")
	}
	if !IsOnCurveSolanaKey(userPublicKey) {
		fields = append(fields, "userPublicKey")
	}

	var amount uint64
	if len(routePayload) > 0 {
		var err error
		amount, err = SolanaRouteAmount(routePayload)
		if err != nil {
			fields = append(fields, "route.inAmount")
		} else if err := feeComputable(amount); err != nil {
			fields = append(fields, "route.inAmount")
		}
	}

	if len(fields) > 0 {
		return 0, &domain.ValidationError{Fields: fields}
	}
	return amount, nil
}

// ExecuteEVM validates an EVM execute request and returns the parsed amount.
func ExecuteEVM(source, fromToken, toToken, amountRaw, userAddress string) (uint64, error) {
	var fields []string

	if strings.TrimSpace(source) == "" {
		fields = append(fields, "bestSource")
	}
	if strings.TrimSpace(fromToken) == "" {
		fields = append(fields, "fromToken")
	}
	if strings.TrimSpace(toToken) == "" {
		fields = append(fields, "toToken")
	}
	if !IsEVMAddress(userAddress) {
		fields = append(fields, "userAddress")
	}
	amount, err := ParseAmount(amountRaw)
	if err != nil || feeComputable(amount) != nil {
		fields = append(fields, "amount")
	}

	if len(fields) > 0 {
		return 0, &domain.ValidationError{Fields: fields}
	}
	return amount, nil
}

// ExecuteBitcoin validates a Bitcoin execute request and returns the
// parsed amount.
func ExecuteBitcoin(toAsset, amountRaw, userAddress string) (uint64, error) {
	var fields []string

	if strings.TrimSpace(toAsset) == "" {
		fields = append(fields, "toAsset")
	}
	if !IsBitcoinAddress(userAddress) {
		fields = append(fields, "userAddress")
	}
	amount, err := ParseAmount(amountRaw)
	if err != nil || feeComputable(amount) != nil {
		fields = append(fields, "amount")
	}

	if len(fields) > 0 {
		return 0, &domain.ValidationError{Fields: fields}
	}
	return amount, nil
}

// feeComputable checks that deducting the protocol fee leaves a positive
// amount, so execution can never settle zero or negative.
func feeComputable(amount uint64) error {
	res, err := fee.Apply(amount)
	if err != nil {
		return err
	}
	if res.AmountAfterFee == 0 {
		return fmt.Errorf("%w: amount after fee is zero", domain.ErrInvalidAmount)
	}
	return nil
}
