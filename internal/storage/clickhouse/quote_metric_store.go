package clickhouse

import (
	"context"
	"fmt"

	"swapgate/internal/domain"
	"swapgate/internal/storage"
)

// QuoteMetricStore implements storage.QuoteMetricStore using ClickHouse.
// quote_metrics is a plain MergeTree timeseries; inserts are append-only
// and uniqueness is not enforced.
type QuoteMetricStore struct {
	conn *Conn
}

// NewQuoteMetricStore creates a new QuoteMetricStore.
func NewQuoteMetricStore(conn *Conn) *QuoteMetricStore {
	return &QuoteMetricStore{conn: conn}
}

// Compile-time interface check.
var _ storage.QuoteMetricStore = (*QuoteMetricStore)(nil)

// Insert adds a quote analytics row.
func (s *QuoteMetricStore) Insert(ctx context.Context, m *domain.QuoteMetric) error {
	if m == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO quote_metrics (
			timestamp_ms, network, source, amount_in, amount_out,
			price_impact, cache_hit, latency_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var cacheHit uint8
	if m.CacheHit {
		cacheHit = 1
	}

	err := s.conn.Exec(ctx, query,
		uint64(m.Timestamp),
		m.Network,
		m.Source,
		m.AmountIn,
		m.AmountOut,
		m.PriceImpact,
		cacheHit,
		m.LatencyMs,
	)
	if err != nil {
		return fmt.Errorf("insert quote metric: %w", err)
	}
	return nil
}
