package domain

// Audit event types and outcomes recorded by the swap event store.
const (
	EventTypeQuote   = "quote"
	EventTypeExecute = "execute"

	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// SwapEventRecord is an append-only audit row describing a single quote or
// execute request outcome. It carries enough context to reconstruct the
// request without upstream secrets. Corresponds to the swap_events table.
type SwapEventRecord struct {
	EventID     string // PRIMARY KEY, uuid
	RequestID   string // per-request uuid shared with logs
	EventType   string // quote | execute
	Network     string // SOL | EVM | BTC | "" when classification failed
	Source      string // winning upstream source, if any
	Caller      string // caller identity (rate-limit identity)
	AmountIn    uint64 // input amount in smallest units
	AmountOut   string // expected output, decimal string ("" on failure)
	Fee         uint64 // protocol fee deducted (execute only)
	Outcome     string // success | rejected | failed
	ErrorReason string // taxonomy label on non-success
	LatencyMs   int64  // total handling latency
	Timestamp   int64  // Unix timestamp in milliseconds
}

// QuoteMetric is a quote analytics timeseries row for offline analysis.
// Corresponds to the quote_metrics ClickHouse table.
type QuoteMetric struct {
	Timestamp   int64   // Unix timestamp in milliseconds
	Network     string  // SOL | EVM | BTC
	Source      string  // upstream source that produced the quote
	AmountIn    uint64  // input amount in smallest units
	AmountOut   string  // expected output, decimal string
	PriceImpact float64 // fraction
	CacheHit    bool    // whether served from the quote cache
	LatencyMs   int64   // handling latency
}
