package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"swapgate/internal/domain"
	"swapgate/internal/rpc"
)

// DefaultJupiterBaseURL is the Jupiter v6 quote API.
const DefaultJupiterBaseURL = "https://quote-api.jup.ag/v6"

// jupiterSlippageBps is the default slippage for quotes (0.5%).
const jupiterSlippageBps = 50

// JupiterClient quotes Solana routes and builds serialized swap
// transactions via the Jupiter aggregator.
type JupiterClient struct {
	base    string
	checker *rpc.Checker
	opts    options
}

// NewJupiterClient creates a Jupiter client. checker resolves a healthy
// Solana RPC endpoint before each call and may be nil in tests.
func NewJupiterClient(baseURL string, checker *rpc.Checker, opts ...Option) *JupiterClient {
	if baseURL == "" {
		baseURL = DefaultJupiterBaseURL
	}
	return &JupiterClient{
		base:    baseURL,
		checker: checker,
		opts:    newOptions(opts),
	}
}

// jupiterQuoteResponse is the subset of the quote response we consume; the
// first route is carried forward verbatim as the opaque payload.
type jupiterQuoteResponse struct {
	Routes []json.RawMessage `json:"routes"`
}

// jupiterRouteFields are the normalized fields read out of a route.
type jupiterRouteFields struct {
	OutAmount      json.RawMessage `json:"outAmount"`
	PriceImpactPct json.RawMessage `json:"priceImpactPct"`
}

// GetQuote fetches the best Jupiter route for the mint pair. It returns
// nil on any upstream failure; the error is logged, never propagated.
func (c *JupiterClient) GetQuote(ctx context.Context, fromMint, toMint string, amount uint64) *domain.Route {
	route, err := c.quote(ctx, fromMint, toMint, amount)
	if err != nil {
		c.opts.logger.Warn("jupiter quote failed",
			"source", domain.SourceJupiter, "from", fromMint, "to", toMint, "err", err)
		return nil
	}
	return route
}

func (c *JupiterClient) quote(ctx context.Context, fromMint, toMint string, amount uint64) (*domain.Route, error) {
	endpoint := c.healthyRPC(ctx)

	params := url.Values{}
	params.Set("inputMint", fromMint)
	params.Set("outputMint", toMint)
	params.Set("amount", strconv.FormatUint(amount, 10))
	params.Set("slippageBps", strconv.Itoa(jupiterSlippageBps))
	params.Set("onlyDirectRoutes", "false")

	var resp jupiterQuoteResponse
	if err := c.opts.getJSON(ctx, domain.SourceJupiter, c.base+"/quote", params, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 {
		return nil, &domain.UpstreamError{
			Source: domain.SourceJupiter,
			Op:     "quote",
			Err:    fmt.Errorf("no routes returned"),
		}
	}

	best := resp.Routes[0]
	var fields jupiterRouteFields
	if err := json.Unmarshal(best, &fields); err != nil {
		return nil, &domain.UpstreamError{Source: domain.SourceJupiter, Op: "decode route", Err: err}
	}

	outAmount := flexString(fields.OutAmount)
	if outAmount == "" {
		return nil, &domain.UpstreamError{
			Source: domain.SourceJupiter,
			Op:     "quote",
			Err:    fmt.Errorf("route carries no outAmount"),
		}
	}

	c.opts.logger.Debug("jupiter quote received",
		"routes", len(resp.Routes), "outAmount", outAmount, "rpc", endpoint)

	return &domain.Route{
		Network:     domain.NetworkSolana,
		Source:      domain.SourceJupiter,
		AmountOut:   outAmount,
		PriceImpact: percentToFraction(flexString(fields.PriceImpactPct)),
		Payload:     best,
	}, nil
}

// jupiterSwapResponse is the swap builder response.
type jupiterSwapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// BuildTransaction asks Jupiter to assemble a serialized, unsigned swap
// transaction for route (base64, signed client-side).
func (c *JupiterClient) BuildTransaction(ctx context.Context, route json.RawMessage, userPublicKey string) (string, error) {
	c.healthyRPC(ctx)

	body := map[string]any{
		"route":               route,
		"userPublicKey":       userPublicKey,
		"wrapAndUnwrapSol":    true,
		"asLegacyTransaction": false,
	}

	var resp jupiterSwapResponse
	if err := c.opts.postJSON(ctx, domain.SourceJupiter, c.base+"/swap", body, &resp); err != nil {
		return "", err
	}
	if resp.SwapTransaction == "" {
		return "", &domain.UpstreamError{
			Source: domain.SourceJupiter,
			Op:     "swap",
			Err:    fmt.Errorf("no transaction returned"),
		}
	}
	return resp.SwapTransaction, nil
}

// healthyRPC resolves the current healthy Solana RPC endpoint for logging
// context; Jupiter itself performs the chain interaction.
func (c *JupiterClient) healthyRPC(ctx context.Context) string {
	if c.checker == nil {
		return ""
	}
	endpoint, err := c.checker.HealthyEndpoint(ctx, domain.NetworkSolana)
	if err != nil {
		return ""
	}
	return endpoint
}

// percentToFraction converts a percent string (Jupiter reports
// priceImpactPct in percent) into the gateway's fractional unit.
func percentToFraction(s string) float64 {
	if s == "" {
		return 0
	}
	pct, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return pct / 100
}
