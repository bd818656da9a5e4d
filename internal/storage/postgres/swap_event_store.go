package postgres

import (
	"context"
	"fmt"

	"swapgate/internal/domain"
	"swapgate/internal/storage"
)

// SwapEventStore implements storage.SwapEventStore using PostgreSQL.
type SwapEventStore struct {
	pool *Pool
}

// NewSwapEventStore creates a new SwapEventStore.
func NewSwapEventStore(pool *Pool) *SwapEventStore {
	return &SwapEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SwapEventStore = (*SwapEventStore)(nil)

// Insert adds a new audit event. Returns ErrDuplicateKey if event_id exists.
func (s *SwapEventStore) Insert(ctx context.Context, e *domain.SwapEventRecord) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO swap_events (
			event_id, request_id, event_type, network, source, caller,
			amount_in, amount_out, fee, outcome, error_reason, latency_ms, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.pool.Exec(ctx, query,
		e.EventID,
		e.RequestID,
		e.EventType,
		e.Network,
		e.Source,
		e.Caller,
		int64(e.AmountIn),
		e.AmountOut,
		int64(e.Fee),
		e.Outcome,
		e.ErrorReason,
		e.LatencyMs,
		e.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert swap event: %w", err)
	}
	return nil
}
