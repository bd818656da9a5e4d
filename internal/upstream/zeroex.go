package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"swapgate/internal/domain"
)

// DefaultZeroExBaseURL is the 0x swap API for Ethereum mainnet.
const DefaultZeroExBaseURL = "https://api.0x.org/swap/v1"

// ZeroExClient quotes EVM routes via the 0x aggregator. 0x quotes double
// as transactions: the quote response already carries signable calldata.
type ZeroExClient struct {
	base string
	opts options
}

// NewZeroExClient creates a 0x client.
func NewZeroExClient(baseURL string, opts ...Option) *ZeroExClient {
	if baseURL == "" {
		baseURL = DefaultZeroExBaseURL
	}
	return &ZeroExClient{
		base: baseURL,
		opts: newOptions(opts),
	}
}

// zeroExQuoteFields are the fields read out of a quote; the whole body is
// kept as the opaque payload. estimatedPriceImpact is already a fraction.
type zeroExQuoteFields struct {
	BuyAmount            json.RawMessage `json:"buyAmount"`
	EstimatedPriceImpact json.RawMessage `json:"estimatedPriceImpact"`
	PriceImpact          json.RawMessage `json:"priceImpact"`
	To                   json.RawMessage `json:"to"`
	Data                 json.RawMessage `json:"data"`
	Value                json.RawMessage `json:"value"`
	Gas                  json.RawMessage `json:"gas"`
	GasPrice             json.RawMessage `json:"gasPrice"`
}

// GetQuote fetches a 0x quote for the token pair. It returns nil on any
// upstream failure.
func (c *ZeroExClient) GetQuote(ctx context.Context, fromToken, toToken string, amount uint64) *domain.Route {
	route, _, err := c.quote(ctx, fromToken, toToken, amount)
	if err != nil {
		c.opts.logger.Warn("0x quote failed",
			"source", domain.SourceZeroEx, "from", fromToken, "to", toToken, "err", err)
		return nil
	}
	return route
}

func (c *ZeroExClient) quote(ctx context.Context, fromToken, toToken string, amount uint64) (*domain.Route, *zeroExQuoteFields, error) {
	params := url.Values{}
	params.Set("sellToken", fromToken)
	params.Set("buyToken", toToken)
	params.Set("sellAmount", strconv.FormatUint(amount, 10))

	var raw json.RawMessage
	if err := c.opts.getJSON(ctx, domain.SourceZeroEx, c.base+"/quote", params, nil, &raw); err != nil {
		return nil, nil, err
	}

	var fields zeroExQuoteFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, nil, &domain.UpstreamError{Source: domain.SourceZeroEx, Op: "decode response", Err: err}
	}

	outAmount := flexString(fields.BuyAmount)
	if outAmount == "" {
		return nil, nil, &domain.UpstreamError{
			Source: domain.SourceZeroEx,
			Op:     "quote",
			Err:    fmt.Errorf("quote carries no buyAmount"),
		}
	}

	return &domain.Route{
		Network:     domain.NetworkEVM,
		Source:      domain.SourceZeroEx,
		AmountOut:   outAmount,
		PriceImpact: c.priceImpact(&fields),
		Payload:     raw,
	}, &fields, nil
}

// BuildSwap re-fetches a 0x quote for the fee-adjusted amount so the
// calldata matches what actually settles, and returns the transaction
// along with its price impact.
func (c *ZeroExClient) BuildSwap(ctx context.Context, fromToken, toToken string, amount uint64) (*domain.EVMTransaction, float64, error) {
	_, fields, err := c.quote(ctx, fromToken, toToken, amount)
	if err != nil {
		return nil, 0, err
	}

	tx := &domain.EVMTransaction{
		To:       flexString(fields.To),
		Data:     flexString(fields.Data),
		Value:    flexString(fields.Value),
		Gas:      flexString(fields.Gas),
		GasPrice: flexString(fields.GasPrice),
	}
	if tx.To == "" || tx.Data == "" {
		return nil, 0, &domain.UpstreamError{
			Source: domain.SourceZeroEx,
			Op:     "swap",
			Err:    fmt.Errorf("quote carries no transaction data"),
		}
	}
	return tx, c.priceImpact(fields), nil
}

// priceImpact reads whichever impact field the response carried; both are
// fractions in the 0x API.
func (c *ZeroExClient) priceImpact(fields *zeroExQuoteFields) float64 {
	for _, raw := range []json.RawMessage{fields.EstimatedPriceImpact, fields.PriceImpact} {
		s := flexString(raw)
		if s == "" {
			continue
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return 0
}
