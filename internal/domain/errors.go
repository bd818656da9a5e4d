package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Gateway error taxonomy. Validation and rate-limit failures are detected
// before any upstream call; upstream failures are absorbed per-source and
// escalate only when no source in the required set succeeds.
var (
	// ErrInvalidAmount is returned for non-positive or non-integral amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrRateLimitExceeded is returned when admission is denied.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrUnsupportedAsset is returned when no network class matches the
	// asset identifier shape.
	ErrUnsupportedAsset = errors.New("unsupported asset")

	// ErrNoRouteAvailable is returned when every matched upstream source
	// failed to produce a quote.
	ErrNoRouteAvailable = errors.New("no route available")

	// ErrRouteBuildFailed is returned when the upstream could not produce a
	// transaction payload for a previously quoted route.
	ErrRouteBuildFailed = errors.New("route build failed")

	// ErrExcessivePriceImpact is returned when a route's price impact
	// exceeds the configured ceiling.
	ErrExcessivePriceImpact = errors.New("excessive price impact")

	// ErrInvalidAddress is returned when an address fails the format check
	// for its network class.
	ErrInvalidAddress = errors.New("invalid address")
)

// ValidationError reports every offending field of a request at once.
// Validation is all-or-nothing: a request is never partially validated.
type ValidationError struct {
	Fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameters: %s", strings.Join(e.Fields, ", "))
}

// UpstreamError wraps a collaborator failure (timeout, non-2xx, malformed
// response). It never reaches callers directly: clients absorb it and
// surface an absent route instead.
type UpstreamError struct {
	Source string
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %s: %v", e.Source, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
