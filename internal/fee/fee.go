// Package fee computes the universal input fee deducted before routing.
// All arithmetic is exact-integer; truncation always favors the protocol.
package fee

import (
	"fmt"

	"swapgate/internal/domain"
)

// RateDivisor encodes the fixed 0.01% fee rate: fee = amount / RateDivisor,
// truncated toward zero.
const RateDivisor = 10_000

// Result splits an input amount into the post-fee amount and the fee.
// Invariant: AmountAfterFee + Fee == input amount.
type Result struct {
	AmountAfterFee uint64
	Fee            uint64
}

// Apply deducts the protocol fee from amount. It is deterministic and
// side-effect free, so quote-time previews and execute-time settlement
// computations on the same amount always agree.
func Apply(amount uint64) (Result, error) {
	if amount == 0 {
		return Result{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}

	f := amount / RateDivisor
	return Result{
		AmountAfterFee: amount - f,
		Fee:            f,
	}, nil
}
