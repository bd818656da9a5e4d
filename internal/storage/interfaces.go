// Package storage defines the append-only audit stores the gateway writes
// to. Both stores are write-mostly: the request path only ever inserts,
// reads happen out of band (reporting, offline analysis, tests).
package storage

import (
	"context"

	"swapgate/internal/domain"
)

// SwapEventStore provides access to swap_events storage.
type SwapEventStore interface {
	// Insert adds a new audit event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.SwapEventRecord) error
}

// QuoteMetricStore provides access to quote_metrics storage.
type QuoteMetricStore interface {
	// Insert adds a quote analytics row. Duplicates are not enforced;
	// the table is a timeseries.
	Insert(ctx context.Context, m *domain.QuoteMetric) error
}
