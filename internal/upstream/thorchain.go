package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"swapgate/internal/domain"
)

// DefaultMidgardBaseURL is the Thorchain Midgard API.
const DefaultMidgardBaseURL = "https://midgard.ninerealms.com/v2/thorchain"

// thorchainTolerancePct is the slippage tolerance sent with quotes.
const thorchainTolerancePct = 1

// BitcoinSourceAsset is the fixed from-asset for Bitcoin-network trades.
const BitcoinSourceAsset = "BTC.BTC"

// ThorchainClient quotes cross-chain swaps through Thorchain's Midgard
// API. Bitcoin swaps are never built as transactions: the caller funds an
// inbound deposit address with a memo attached.
type ThorchainClient struct {
	base string
	opts options
}

// NewThorchainClient creates a Midgard client.
func NewThorchainClient(baseURL string, opts ...Option) *ThorchainClient {
	if baseURL == "" {
		baseURL = DefaultMidgardBaseURL
	}
	return &ThorchainClient{
		base: baseURL,
		opts: newOptions(opts),
	}
}

// thorchainQuoteFields tolerates both snake_case and camelCase field names
// across Midgard versions.
type thorchainQuoteFields struct {
	ExpectedAmountOutSnake json.RawMessage `json:"expected_amount_out"`
	ExpectedAmountOutCamel json.RawMessage `json:"expectedAmountOut"`
	InboundAddressSnake    string          `json:"inbound_address"`
	InboundAddressCamel    string          `json:"inboundAddress"`
	Memo                   string          `json:"memo"`
	Fees                   json.RawMessage `json:"fees"`
}

// GetQuote fetches a Thorchain swap quote. It returns nil on any upstream
// failure. Thorchain reports no price impact; the normalized impact stays 0.
func (c *ThorchainClient) GetQuote(ctx context.Context, fromAsset, toAsset string, amount uint64) *domain.Route {
	route, err := c.quote(ctx, fromAsset, toAsset, amount)
	if err != nil {
		c.opts.logger.Warn("thorchain quote failed",
			"source", domain.SourceThorchain, "from", fromAsset, "to", toAsset, "err", err)
		return nil
	}
	return route
}

func (c *ThorchainClient) quote(ctx context.Context, fromAsset, toAsset string, amount uint64) (*domain.Route, error) {
	params := url.Values{}
	params.Set("from_asset", fromAsset)
	params.Set("to_asset", toAsset)
	params.Set("amount", strconv.FormatUint(amount, 10))
	params.Set("tolerance", strconv.Itoa(thorchainTolerancePct))

	var raw json.RawMessage
	if err := c.opts.getJSON(ctx, domain.SourceThorchain, c.base+"/quote/swap", params, nil, &raw); err != nil {
		return nil, err
	}

	var fields thorchainQuoteFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &domain.UpstreamError{Source: domain.SourceThorchain, Op: "decode response", Err: err}
	}

	outAmount := flexString(fields.ExpectedAmountOutSnake)
	if outAmount == "" {
		outAmount = flexString(fields.ExpectedAmountOutCamel)
	}
	if outAmount == "" {
		return nil, &domain.UpstreamError{
			Source: domain.SourceThorchain,
			Op:     "quote",
			Err:    fmt.Errorf("quote carries no expected amount out"),
		}
	}

	inbound := fields.InboundAddressSnake
	if inbound == "" {
		inbound = fields.InboundAddressCamel
	}

	return &domain.Route{
		Network:        domain.NetworkBitcoin,
		Source:         domain.SourceThorchain,
		AmountOut:      outAmount,
		Payload:        raw,
		InboundAddress: inbound,
		Memo:           fields.Memo,
		Fees:           fields.Fees,
	}, nil
}

// InboundAddress describes the current inbound entry for a chain.
type InboundAddress struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	Router  string `json:"router"`
	Halted  bool   `json:"halted"`
}

// BitcoinInboundAddress resolves the current BTC inbound deposit address.
// A halted chain is an error: deposits to a halted chain are lost.
func (c *ThorchainClient) BitcoinInboundAddress(ctx context.Context) (*InboundAddress, error) {
	var entries []InboundAddress
	if err := c.opts.getJSON(ctx, domain.SourceThorchain, c.base+"/inbound_addresses", nil, nil, &entries); err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].Chain != "BTC" {
			continue
		}
		if entries[i].Halted {
			return nil, &domain.UpstreamError{
				Source: domain.SourceThorchain,
				Op:     "inbound_addresses",
				Err:    fmt.Errorf("BTC chain is halted"),
			}
		}
		if entries[i].Address == "" {
			break
		}
		return &entries[i], nil
	}
	return nil, &domain.UpstreamError{
		Source: domain.SourceThorchain,
		Op:     "inbound_addresses",
		Err:    fmt.Errorf("no BTC inbound address found"),
	}
}

// SwapMemo encodes the destination asset and caller address for a deposit.
func SwapMemo(toAsset, userAddress string) string {
	return fmt.Sprintf("SWAP:%s:%s", toAsset, userAddress)
}

// BuildSwap resolves the inbound BTC address and assembles the deposit
// instruction the caller executes from their own wallet.
func (c *ThorchainClient) BuildSwap(ctx context.Context, toAsset, userAddress string) (address, memo string, err error) {
	inbound, err := c.BitcoinInboundAddress(ctx)
	if err != nil {
		return "", "", err
	}
	return inbound.Address, SwapMemo(toAsset, userAddress), nil
}
