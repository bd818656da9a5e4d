// Package rpc probes configured chain RPC endpoints and resolves the first
// healthy one. Probes are cheap JSON-RPC calls with a tight timeout:
// getHealth for Solana, eth_blockNumber for EVM.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"swapgate/internal/domain"
)

// DefaultProbeTimeout bounds a single health probe.
const DefaultProbeTimeout = 800 * time.Millisecond

// Checker resolves healthy RPC endpoints per network with
// first-healthy-wins failover. When every endpoint fails the probe, the
// first configured endpoint is returned so callers still have a target.
type Checker struct {
	solana []string
	evm    []string

	client       *http.Client
	probeTimeout time.Duration
	logger       *slog.Logger
	requestID    atomic.Uint64
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		c.client = client
	}
}

// WithProbeTimeout sets the per-probe timeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.probeTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a Checker over the configured endpoint lists.
func NewChecker(solanaEndpoints, evmEndpoints []string, opts ...Option) *Checker {
	c := &Checker{
		solana:       solanaEndpoints,
		evm:          evmEndpoints,
		client:       &http.Client{},
		probeTimeout: DefaultProbeTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
}

// HealthyEndpoint returns the first configured endpoint for network that
// answers its health probe, or the first configured endpoint when none do.
func (c *Checker) HealthyEndpoint(ctx context.Context, network domain.NetworkClass) (string, error) {
	var endpoints []string
	switch network {
	case domain.NetworkSolana:
		endpoints = c.solana
	case domain.NetworkEVM:
		endpoints = c.evm
	default:
		return "", fmt.Errorf("no RPC endpoints for network %s", network)
	}

	if len(endpoints) == 0 {
		return "", fmt.Errorf("no RPC endpoints configured for network %s", network)
	}

	for _, url := range endpoints {
		if c.probe(ctx, network, url) {
			return url, nil
		}
		c.logger.Warn("rpc endpoint unhealthy", "network", network.String(), "endpoint", url)
	}

	return endpoints[0], nil
}

// probe runs one health call against url.
func (c *Checker) probe(ctx context.Context, network domain.NetworkClass, url string) bool {
	method := "eth_blockNumber"
	if network == domain.NetworkSolana {
		method = "getHealth"
	}

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  []any{},
	})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return false
	}

	var parsed rpcResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return false
	}

	if network == domain.NetworkSolana {
		var status string
		return json.Unmarshal(parsed.Result, &status) == nil && status == "ok"
	}
	return len(parsed.Result) > 0 && string(parsed.Result) != "null"
}
