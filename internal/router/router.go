package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"swapgate/internal/domain"
	"swapgate/internal/optimizer"
	"swapgate/internal/upstream"
)

// SolanaSource quotes a swap between two SPL mints.
type SolanaSource interface {
	GetQuote(ctx context.Context, fromMint, toMint string, amount uint64) *domain.Route
}

// EVMSource quotes a swap between two ERC-20 token addresses.
type EVMSource interface {
	GetQuote(ctx context.Context, fromToken, toToken string, amount uint64) *domain.Route
}

// BitcoinSource quotes a cross-chain swap out of native BTC.
type BitcoinSource interface {
	GetQuote(ctx context.Context, fromAsset, toAsset string, amount uint64) *domain.Route
}

// Router classifies the source asset and dispatches the quote to the
// matching aggregator set. EVM quotes fan out to every configured
// aggregator concurrently; the other networks have a single source.
type Router struct {
	solana  SolanaSource
	evm     []EVMSource
	bitcoin BitcoinSource
	logger  *slog.Logger
}

type Option func(*Router)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New builds a Router. The evm slice order is significant: when two
// aggregators return the same output amount, the earlier one wins.
func New(solana SolanaSource, evm []EVMSource, bitcoin BitcoinSource, opts ...Option) *Router {
	r := &Router{
		solana:  solana,
		evm:     evm,
		bitcoin: bitcoin,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route quotes fromID -> toID for the given raw amount, picking the
// network from the shape of fromID.
func (r *Router) Route(ctx context.Context, fromID, toID string, amount uint64) (*domain.Route, error) {
	network, err := Classify(fromID)
	if err != nil {
		return nil, err
	}
	switch network {
	case domain.NetworkSolana:
		return r.QuoteSolana(ctx, fromID, toID, amount)
	case domain.NetworkEVM:
		return r.QuoteEVM(ctx, fromID, toID, amount)
	default:
		return r.QuoteBitcoin(ctx, toID, amount)
	}
}

func (r *Router) QuoteSolana(ctx context.Context, fromMint, toMint string, amount uint64) (*domain.Route, error) {
	if r.solana == nil {
		return nil, fmt.Errorf("solana: %w", domain.ErrNoRouteAvailable)
	}
	route := r.solana.GetQuote(ctx, fromMint, toMint, amount)
	if route == nil {
		return nil, fmt.Errorf("solana %s/%s: %w", fromMint, toMint, domain.ErrNoRouteAvailable)
	}
	return route, nil
}

// QuoteEVM queries every configured aggregator concurrently and keeps
// the route with the strictly greatest output amount. A failed
// aggregator contributes a nil slot and is skipped by the optimizer.
func (r *Router) QuoteEVM(ctx context.Context, fromToken, toToken string, amount uint64) (*domain.Route, error) {
	candidates := make([]*domain.Route, len(r.evm))

	var wg sync.WaitGroup
	for i, source := range r.evm {
		wg.Add(1)
		go func(i int, source EVMSource) {
			defer wg.Done()
			candidates[i] = source.GetQuote(ctx, fromToken, toToken, amount)
		}(i, source)
	}
	wg.Wait()

	best := optimizer.PickBest(candidates)
	if best == nil {
		return nil, fmt.Errorf("evm %s/%s: %w", fromToken, toToken, domain.ErrNoRouteAvailable)
	}
	r.logger.Debug("evm route selected",
		"source", best.Source,
		"amount_out", best.AmountOut,
		"candidates", len(candidates))
	return best, nil
}

func (r *Router) QuoteBitcoin(ctx context.Context, toAsset string, amount uint64) (*domain.Route, error) {
	if r.bitcoin == nil {
		return nil, fmt.Errorf("bitcoin: %w", domain.ErrNoRouteAvailable)
	}
	route := r.bitcoin.GetQuote(ctx, upstream.BitcoinSourceAsset, toAsset, amount)
	if route == nil {
		return nil, fmt.Errorf("bitcoin %s: %w", toAsset, domain.ErrNoRouteAvailable)
	}
	return route, nil
}
