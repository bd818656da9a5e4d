// Package optimizer ranks same-network candidate routes by expected
// output. Amounts are compared as exact integers; floats never enter the
// comparison.
package optimizer

import (
	"math/big"

	"swapgate/internal/domain"
)

// PickBest selects the candidate with the strictly greatest expected
// output amount. Absent candidates (failed sources) and candidates whose
// amount does not parse are skipped. Ties resolve to the first-seen
// candidate in input order, which makes source declaration order the
// deterministic, reproducible tie-break. Returns nil only when every
// candidate failed.
func PickBest(candidates []*domain.Route) *domain.Route {
	var best *domain.Route
	var bestAmount *big.Int

	for _, c := range candidates {
		if c == nil {
			continue
		}
		amount, ok := new(big.Int).SetString(c.AmountOut, 10)
		if !ok || amount.Sign() <= 0 {
			continue
		}
		// Strictly greater: an equal amount keeps the earlier candidate.
		if best == nil || amount.Cmp(bestAmount) > 0 {
			best = c
			bestAmount = amount
		}
	}
	return best
}
