// Package upstream implements the aggregator clients the gateway quotes
// against: Jupiter (Solana), 1inch and 0x (EVM), and Thorchain's Midgard
// (Bitcoin). Every client absorbs its upstream's failures — timeout,
// non-2xx, malformed body — and surfaces an absent route instead of an
// error, so the router and optimizer can proceed with whatever subset of
// sources succeeded.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"swapgate/internal/domain"
	"swapgate/internal/observability"
)

// DefaultTimeout bounds every upstream call; no request may block
// indefinitely.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps upstream response bodies.
const maxResponseBytes = 4 << 20

// options holds shared client configuration.
type options struct {
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an upstream client.
type Option func(*options)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{
		client:  &http.Client{},
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// getJSON issues a GET with query params and decodes the 2xx response body
// into out (which may be *json.RawMessage to keep the body opaque).
func (o *options) getJSON(ctx context.Context, source, rawURL string, params url.Values, headers http.Header, out any) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &domain.UpstreamError{Source: source, Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	return o.do(source, req, out)
}

// postJSON issues a POST with a JSON body and decodes the response into out.
func (o *options) postJSON(ctx context.Context, source, rawURL string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	encoded, err := json.Marshal(body)
	if err != nil {
		return &domain.UpstreamError{Source: source, Op: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(string(encoded)))
	if err != nil {
		return &domain.UpstreamError{Source: source, Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return o.do(source, req, out)
}

func (o *options) do(source string, req *http.Request, out any) error {
	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		observability.RecordUpstreamRequest(source, "error", time.Since(start).Seconds())
		return &domain.UpstreamError{Source: source, Op: "http", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		observability.RecordUpstreamRequest(source, "error", time.Since(start).Seconds())
		return &domain.UpstreamError{Source: source, Op: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observability.RecordUpstreamRequest(source, "error", time.Since(start).Seconds())
		return &domain.UpstreamError{
			Source: source,
			Op:     "http",
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, truncate(data, 256)),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		observability.RecordUpstreamRequest(source, "error", time.Since(start).Seconds())
		return &domain.UpstreamError{Source: source, Op: "decode response", Err: err}
	}

	observability.RecordUpstreamRequest(source, "success", time.Since(start).Seconds())
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// flexString renders a JSON value that upstreams serve inconsistently as
// either a string or a bare number.
func flexString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
