package validate

import (
	"fmt"
	"regexp"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"swapgate/internal/domain"
)

var (
	// EVM addresses are exactly a 0x-prefixed 40-hex-digit string.
	evmAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

	// Bitcoin addresses accept legacy (1, 3) and segwit (bc1) prefixes.
	btcAddressRe = regexp.MustCompile(`(?i)^(bc1|[13])[a-zA-HJ-NP-Z0-9]{25,}$`)
)

// IsEVMAddress reports whether s is a well-formed EVM address.
func IsEVMAddress(s string) bool {
	return evmAddressRe.MatchString(strings.TrimSpace(s))
}

// IsBitcoinAddress reports whether s is a well-formed Bitcoin address.
func IsBitcoinAddress(s string) bool {
	return btcAddressRe.MatchString(strings.TrimSpace(s))
}

// IsSolanaAddress reports whether s decodes as a 32-byte base58 value.
// Program-derived addresses are intentionally accepted; this is a shape
// check, not a key check.
func IsSolanaAddress(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 32 || len(s) > 44 || strings.HasPrefix(s, "0x") {
		return false
	}
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == 32
}

// IsOnCurveSolanaKey reports whether s is a base58 ed25519 public key that
// lies on the curve. Wallet signing keys must be on-curve; off-curve PDAs
// cannot sign a transaction.
func IsOnCurveSolanaKey(s string) bool {
	raw, err := base58.Decode(strings.TrimSpace(s))
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}

// Address checks addr against the format rules of network. Used by the
// execution builder to re-validate the caller address for a route's
// network class.
func Address(network domain.NetworkClass, addr string) error {
	ok := false
	switch network {
	case domain.NetworkSolana:
		ok = IsOnCurveSolanaKey(addr)
	case domain.NetworkEVM:
		ok = IsEVMAddress(addr)
	case domain.NetworkBitcoin:
		ok = IsBitcoinAddress(addr)
	}
	if !ok {
		return fmt.Errorf("%w: not a valid %s address", domain.ErrInvalidAddress, network)
	}
	return nil
}
