package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"swapgate/internal/domain"
)

// DefaultOneInchBaseURL targets Ethereum mainnet (chain id 1).
const DefaultOneInchBaseURL = "https://api.1inch.dev/swap/v5.2/1"

// oneInchSlippage is the default slippage percentage for swaps.
const oneInchSlippage = 1

// OneInchClient quotes EVM routes and builds swap calldata via 1inch.
// It never holds keys; everything it returns is signed client-side.
type OneInchClient struct {
	base   string
	apiKey string
	opts   options
}

// NewOneInchClient creates a 1inch client. apiKey may be empty; the public
// tier then applies.
func NewOneInchClient(baseURL, apiKey string, opts ...Option) *OneInchClient {
	if baseURL == "" {
		baseURL = DefaultOneInchBaseURL
	}
	return &OneInchClient{
		base:   baseURL,
		apiKey: apiKey,
		opts:   newOptions(opts),
	}
}

func (c *OneInchClient) headers() http.Header {
	h := http.Header{}
	if c.apiKey != "" {
		h.Set("Authorization", "Bearer "+c.apiKey)
	}
	return h
}

// oneInchQuoteFields are the fields read out of a quote; the whole body is
// kept as the opaque payload. Newer API versions report toAmount, older
// ones toTokenAmount.
type oneInchQuoteFields struct {
	ToAmount      json.RawMessage `json:"toAmount"`
	ToTokenAmount json.RawMessage `json:"toTokenAmount"`
}

// GetQuote fetches a 1inch quote for the token pair. It returns nil on any
// upstream failure. 1inch does not report price impact on quotes, so the
// normalized impact stays 0 (unknown).
func (c *OneInchClient) GetQuote(ctx context.Context, fromToken, toToken string, amount uint64) *domain.Route {
	route, err := c.quote(ctx, fromToken, toToken, amount)
	if err != nil {
		c.opts.logger.Warn("1inch quote failed",
			"source", domain.SourceOneInch, "from", fromToken, "to", toToken, "err", err)
		return nil
	}
	return route
}

func (c *OneInchClient) quote(ctx context.Context, fromToken, toToken string, amount uint64) (*domain.Route, error) {
	params := url.Values{}
	params.Set("src", fromToken)
	params.Set("dst", toToken)
	params.Set("amount", strconv.FormatUint(amount, 10))
	params.Set("slippage", strconv.Itoa(oneInchSlippage))

	var raw json.RawMessage
	if err := c.opts.getJSON(ctx, domain.SourceOneInch, c.base+"/quote", params, c.headers(), &raw); err != nil {
		return nil, err
	}

	var fields oneInchQuoteFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &domain.UpstreamError{Source: domain.SourceOneInch, Op: "decode response", Err: err}
	}

	outAmount := flexString(fields.ToAmount)
	if outAmount == "" {
		outAmount = flexString(fields.ToTokenAmount)
	}
	if outAmount == "" {
		return nil, &domain.UpstreamError{
			Source: domain.SourceOneInch,
			Op:     "quote",
			Err:    fmt.Errorf("quote carries no output amount"),
		}
	}

	return &domain.Route{
		Network:   domain.NetworkEVM,
		Source:    domain.SourceOneInch,
		AmountOut: outAmount,
		Payload:   raw,
	}, nil
}

// oneInchSwapResponse unwraps the tx envelope; some API versions nest it
// under "tx", others return the fields at the top level.
type oneInchSwapResponse struct {
	Tx       *oneInchTxFields `json:"tx"`
	To       json.RawMessage  `json:"to"`
	Data     json.RawMessage  `json:"data"`
	Value    json.RawMessage  `json:"value"`
	Gas      json.RawMessage  `json:"gas"`
	GasPrice json.RawMessage  `json:"gasPrice"`
}

type oneInchTxFields struct {
	To       json.RawMessage `json:"to"`
	Data     json.RawMessage `json:"data"`
	Value    json.RawMessage `json:"value"`
	Gas      json.RawMessage `json:"gas"`
	GasPrice json.RawMessage `json:"gasPrice"`
}

// BuildSwap builds a 1inch swap transaction for the fee-adjusted amount
// that an EVM wallet can sign and broadcast.
func (c *OneInchClient) BuildSwap(ctx context.Context, fromToken, toToken string, amount uint64, userAddress string) (*domain.EVMTransaction, error) {
	params := url.Values{}
	params.Set("src", fromToken)
	params.Set("dst", toToken)
	params.Set("amount", strconv.FormatUint(amount, 10))
	params.Set("from", userAddress)
	params.Set("slippage", strconv.Itoa(oneInchSlippage))

	var resp oneInchSwapResponse
	if err := c.opts.getJSON(ctx, domain.SourceOneInch, c.base+"/swap", params, c.headers(), &resp); err != nil {
		return nil, err
	}

	fields := oneInchTxFields{
		To:       resp.To,
		Data:     resp.Data,
		Value:    resp.Value,
		Gas:      resp.Gas,
		GasPrice: resp.GasPrice,
	}
	if resp.Tx != nil {
		fields = *resp.Tx
	}

	tx := &domain.EVMTransaction{
		To:       flexString(fields.To),
		Data:     flexString(fields.Data),
		Value:    flexString(fields.Value),
		Gas:      flexString(fields.Gas),
		GasPrice: flexString(fields.GasPrice),
	}
	if tx.To == "" || tx.Data == "" {
		return nil, &domain.UpstreamError{
			Source: domain.SourceOneInch,
			Op:     "swap",
			Err:    fmt.Errorf("incomplete transaction fields"),
		}
	}
	return tx, nil
}
