// Package execution turns a previously quoted route into a signable
// artifact. Nothing from the quote phase is trusted: the input amount is
// re-derived, the protocol fee is re-applied, the destination address is
// re-validated, and the price impact ceiling is re-enforced before any
// upstream build call goes out.
package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"swapgate/internal/domain"
	"swapgate/internal/fee"
	"swapgate/internal/validate"
)

// DefaultMaxPriceImpact is the fractional ceiling above which an
// execution is refused outright.
const DefaultMaxPriceImpact = 0.20

// SolanaBuilder assembles an unsigned serialized Solana transaction from
// an opaque route payload.
type SolanaBuilder interface {
	BuildTransaction(ctx context.Context, route json.RawMessage, userPublicKey string) (string, error)
}

// OneInchBuilder assembles a 1inch swap calldata for the given pair.
type OneInchBuilder interface {
	BuildSwap(ctx context.Context, fromToken, toToken string, amount uint64, userAddress string) (*domain.EVMTransaction, error)
}

// ZeroExBuilder assembles a 0x swap calldata and reports the fractional
// price impact of the firm quote it was built from.
type ZeroExBuilder interface {
	BuildSwap(ctx context.Context, fromToken, toToken string, amount uint64) (*domain.EVMTransaction, float64, error)
}

// BitcoinBuilder resolves the inbound deposit address and memo for a
// BTC-origin cross-chain swap.
type BitcoinBuilder interface {
	BuildSwap(ctx context.Context, toAsset, userAddress string) (address, memo string, err error)
}

type Builder struct {
	jupiter   SolanaBuilder
	oneInch   OneInchBuilder
	zeroEx    ZeroExBuilder
	thorchain BitcoinBuilder

	solFeeWallet string
	evmFeeWallet string
	btcFeeWallet string

	maxPriceImpact float64
	logger         *slog.Logger
}

type Option func(*Builder)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMaxPriceImpact overrides the fractional price impact ceiling.
func WithMaxPriceImpact(max float64) Option {
	return func(b *Builder) {
		if max > 0 {
			b.maxPriceImpact = max
		}
	}
}

// FeeWallets carries the per-network protocol fee destinations.
type FeeWallets struct {
	Solana  string
	EVM     string
	Bitcoin string
}

func New(jupiter SolanaBuilder, oneInch OneInchBuilder, zeroEx ZeroExBuilder, thorchain BitcoinBuilder, wallets FeeWallets, opts ...Option) *Builder {
	b := &Builder{
		jupiter:        jupiter,
		oneInch:        oneInch,
		zeroEx:         zeroEx,
		thorchain:      thorchain,
		solFeeWallet:   wallets.Solana,
		evmFeeWallet:   wallets.EVM,
		btcFeeWallet:   wallets.Bitcoin,
		maxPriceImpact: DefaultMaxPriceImpact,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Solana builds an unsigned swap transaction from a Jupiter route payload.
// The fee-adjusted amount and the fee transfer destination are folded into
// the payload so the upstream swap instruction settles net of fee.
func (b *Builder) Solana(ctx context.Context, route json.RawMessage, userPublicKey string) (*domain.Execution, error) {
	amount, err := validate.ExecuteSolana(route, userPublicKey)
	if err != nil {
		return nil, err
	}
	res, err := fee.Apply(amount)
	if err != nil {
		return nil, err
	}
	if err := b.checkImpact(routePriceImpact(route), domain.SourceJupiter); err != nil {
		return nil, err
	}

	merged, err := mergeSolanaRoute(route, res, b.solFeeWallet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRouteBuildFailed, err)
	}

	if b.jupiter == nil {
		return nil, fmt.Errorf("%w: no solana builder configured", domain.ErrRouteBuildFailed)
	}
	serialized, err := b.jupiter.BuildTransaction(ctx, merged, userPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRouteBuildFailed, err)
	}

	return &domain.Execution{
		Network:        domain.NetworkSolana,
		Fee:            res.Fee,
		AmountAfterFee: res.AmountAfterFee,
		SerializedTx:   serialized,
	}, nil
}

// EVM builds swap calldata through the aggregator the quote phase picked.
// The swap itself is built at the fee-adjusted amount; the fee travels as
// a separate transfer the wallet submits alongside.
func (b *Builder) EVM(ctx context.Context, source, fromToken, toToken, amountRaw, userAddress string) (*domain.Execution, error) {
	amount, err := validate.ExecuteEVM(source, fromToken, toToken, amountRaw, userAddress)
	if err != nil {
		return nil, err
	}
	res, err := fee.Apply(amount)
	if err != nil {
		return nil, err
	}

	var tx *domain.EVMTransaction
	switch source {
	case domain.SourceOneInch:
		if b.oneInch == nil {
			return nil, fmt.Errorf("%w: no 1inch builder configured", domain.ErrRouteBuildFailed)
		}
		tx, err = b.oneInch.BuildSwap(ctx, fromToken, toToken, res.AmountAfterFee, userAddress)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRouteBuildFailed, err)
		}
	case domain.SourceZeroEx:
		if b.zeroEx == nil {
			return nil, fmt.Errorf("%w: no 0x builder configured", domain.ErrRouteBuildFailed)
		}
		var impact float64
		tx, impact, err = b.zeroEx.BuildSwap(ctx, fromToken, toToken, res.AmountAfterFee)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRouteBuildFailed, err)
		}
		if err := b.checkImpact(impact, domain.SourceZeroEx); err != nil {
			return nil, err
		}
	default:
		return nil, &domain.ValidationError{Fields: []string{"bestSource"}}
	}

	return &domain.Execution{
		Network:        domain.NetworkEVM,
		Fee:            res.Fee,
		AmountAfterFee: res.AmountAfterFee,
		SwapTx:         tx,
		FeeTransfer:    &domain.FeeTransfer{To: b.evmFeeWallet, Value: res.Fee},
	}, nil
}

// Bitcoin produces a manual deposit instruction. There is no transaction
// to build: the caller funds the inbound vault address with the memo
// attached and the cross-chain protocol settles the swap.
func (b *Builder) Bitcoin(ctx context.Context, toAsset, amountRaw, userAddress string) (*domain.Execution, error) {
	amount, err := validate.ExecuteBitcoin(toAsset, amountRaw, userAddress)
	if err != nil {
		return nil, err
	}
	res, err := fee.Apply(amount)
	if err != nil {
		return nil, err
	}

	if b.thorchain == nil {
		return nil, fmt.Errorf("%w: no bitcoin builder configured", domain.ErrRouteBuildFailed)
	}
	address, memo, err := b.thorchain.BuildSwap(ctx, toAsset, userAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRouteBuildFailed, err)
	}

	return &domain.Execution{
		Network:        domain.NetworkBitcoin,
		Fee:            res.Fee,
		AmountAfterFee: res.AmountAfterFee,
		Deposit: &domain.BitcoinDeposit{
			DepositAddress: address,
			Memo:           memo,
			Amount:         res.AmountAfterFee,
			ToAsset:        toAsset,
			FeeDestination: b.btcFeeWallet,
		},
	}, nil
}

func (b *Builder) checkImpact(impact float64, source string) error {
	if impact > b.maxPriceImpact {
		b.logger.Warn("execution refused on price impact",
			"source", source,
			"impact", impact,
			"ceiling", b.maxPriceImpact)
		return fmt.Errorf("%w: %.4f exceeds %.2f", domain.ErrExcessivePriceImpact, impact, b.maxPriceImpact)
	}
	return nil
}

// routePriceImpact reads the priceImpactPct carried inside a Jupiter route
// payload and normalizes it from percent to a fraction. A missing or
// unreadable field reads as zero, matching the quote phase.
func routePriceImpact(route json.RawMessage) float64 {
	var fields struct {
		PriceImpactPct json.RawMessage `json:"priceImpactPct"`
	}
	if err := json.Unmarshal(route, &fields); err != nil || len(fields.PriceImpactPct) == 0 {
		return 0
	}
	var asNumber float64
	if err := json.Unmarshal(fields.PriceImpactPct, &asNumber); err == nil {
		return asNumber / 100
	}
	var asString string
	if err := json.Unmarshal(fields.PriceImpactPct, &asString); err == nil {
		if parsed, err := strconv.ParseFloat(asString, 64); err == nil {
			return parsed / 100
		}
	}
	return 0
}

// mergeSolanaRoute re-embeds the fee-adjusted amount and the fee transfer
// into the opaque route object before it is sent to the swap builder.
func mergeSolanaRoute(route json.RawMessage, res fee.Result, feeWallet string) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(route, &obj); err != nil {
		return nil, fmt.Errorf("decode route payload: %w", err)
	}

	transfer, err := json.Marshal(domain.FeeTransfer{To: feeWallet, Value: res.Fee})
	if err != nil {
		return nil, err
	}
	obj["amountAfterFee"] = json.RawMessage(fmt.Sprintf("%d", res.AmountAfterFee))
	obj["feeTransfer"] = transfer

	merged, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return merged, nil
}
