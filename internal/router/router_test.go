package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapgate/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		fromID  string
		want    domain.NetworkClass
		wantErr bool
	}{
		{name: "sol symbol", fromID: "SOL", want: domain.NetworkSolana},
		{name: "eth symbol", fromID: "ETH", want: domain.NetworkEVM},
		{name: "btc symbol", fromID: "BTC", want: domain.NetworkBitcoin},
		{name: "evm address", fromID: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", want: domain.NetworkEVM},
		{name: "solana mint", fromID: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", want: domain.NetworkSolana},
		{name: "symbol beats shape", fromID: " BTC ", want: domain.NetworkBitcoin},
		{name: "short evm hex", fromID: "0xabc", wantErr: true},
		{name: "base58 too short", fromID: "abc", wantErr: true},
		{name: "empty", fromID: "", wantErr: true},
		{name: "lowercase symbol not recognized", fromID: "sol", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Classify(tc.fromID)
			if tc.wantErr {
				require.ErrorIs(t, err, domain.ErrUnsupportedAsset)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

type stubSolana struct {
	route   *domain.Route
	gotFrom string
	gotTo   string
	gotAmt  uint64
}

func (s *stubSolana) GetQuote(_ context.Context, fromMint, toMint string, amount uint64) *domain.Route {
	s.gotFrom, s.gotTo, s.gotAmt = fromMint, toMint, amount
	return s.route
}

type stubEVM struct {
	route *domain.Route
	delay time.Duration
}

func (s *stubEVM) GetQuote(context.Context, string, string, uint64) *domain.Route {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.route
}

type stubBitcoin struct {
	route   *domain.Route
	gotFrom string
	gotTo   string
}

func (s *stubBitcoin) GetQuote(_ context.Context, fromAsset, toAsset string, _ uint64) *domain.Route {
	s.gotFrom, s.gotTo = fromAsset, toAsset
	return s.route
}

func TestQuoteSolanaPassesThrough(t *testing.T) {
	want := &domain.Route{Network: domain.NetworkSolana, Source: domain.SourceJupiter, AmountOut: "42"}
	src := &stubSolana{route: want}
	r := New(src, nil, nil)

	got, err := r.Route(context.Background(), "SOL", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", 1_000_000)
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, "SOL", src.gotFrom)
	assert.Equal(t, uint64(1_000_000), src.gotAmt)
}

func TestQuoteSolanaNoRoute(t *testing.T) {
	r := New(&stubSolana{}, nil, nil)
	_, err := r.Route(context.Background(), "SOL", "mint", 100)
	require.ErrorIs(t, err, domain.ErrNoRouteAvailable)
}

func TestQuoteEVMPicksBestAcrossSources(t *testing.T) {
	oneInch := &stubEVM{route: &domain.Route{Source: domain.SourceOneInch, AmountOut: "100"}}
	zeroEx := &stubEVM{route: &domain.Route{Source: domain.SourceZeroEx, AmountOut: "250"}}
	r := New(nil, []EVMSource{oneInch, zeroEx}, nil)

	got, err := r.QuoteEVM(context.Background(), "0xaaa", "0xbbb", 500)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceZeroEx, got.Source)
}

func TestQuoteEVMTieKeepsDeclarationOrder(t *testing.T) {
	// The later source returns first; declaration order must still win.
	oneInch := &stubEVM{route: &domain.Route{Source: domain.SourceOneInch, AmountOut: "250"}, delay: 20 * time.Millisecond}
	zeroEx := &stubEVM{route: &domain.Route{Source: domain.SourceZeroEx, AmountOut: "250"}}
	r := New(nil, []EVMSource{oneInch, zeroEx}, nil)

	got, err := r.QuoteEVM(context.Background(), "0xaaa", "0xbbb", 500)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceOneInch, got.Source)
}

func TestQuoteEVMSurvivesPartialFailure(t *testing.T) {
	zeroEx := &stubEVM{route: &domain.Route{Source: domain.SourceZeroEx, AmountOut: "90"}}
	r := New(nil, []EVMSource{&stubEVM{route: nil}, zeroEx}, nil)

	got, err := r.QuoteEVM(context.Background(), "0xaaa", "0xbbb", 500)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceZeroEx, got.Source)
}

func TestQuoteEVMAllFailed(t *testing.T) {
	r := New(nil, []EVMSource{&stubEVM{}, &stubEVM{}}, nil)
	_, err := r.QuoteEVM(context.Background(), "0xaaa", "0xbbb", 500)
	require.ErrorIs(t, err, domain.ErrNoRouteAvailable)
}

func TestQuoteBitcoinUsesNativeSourceAsset(t *testing.T) {
	src := &stubBitcoin{route: &domain.Route{Network: domain.NetworkBitcoin, Source: domain.SourceThorchain, AmountOut: "7"}}
	r := New(nil, nil, src)

	got, err := r.Route(context.Background(), "BTC", "ETH.ETH", 100_000)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceThorchain, got.Source)
	assert.Equal(t, "BTC.BTC", src.gotFrom)
	assert.Equal(t, "ETH.ETH", src.gotTo)
}

func TestRouteUnsupportedAsset(t *testing.T) {
	r := New(nil, nil, nil)
	_, err := r.Route(context.Background(), "DOGE", "ETH", 100)
	require.ErrorIs(t, err, domain.ErrUnsupportedAsset)
}
