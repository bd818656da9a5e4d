package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapgate/internal/domain"
	"swapgate/internal/storage"
)

func TestSwapEventStoreInsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapEventStore(pool)
	ctx := context.Background()

	e := &domain.SwapEventRecord{
		EventID:   "11111111-1111-1111-1111-111111111111",
		RequestID: "22222222-2222-2222-2222-222222222222",
		EventType: domain.EventTypeExecute,
		Network:   string(domain.NetworkEVM),
		Source:    domain.SourceOneInch,
		Caller:    "198.51.100.7",
		AmountIn:  20_000,
		AmountOut: "19998",
		Fee:       2,
		Outcome:   domain.OutcomeSuccess,
		LatencyMs: 41,
		Timestamp: 1700000000000,
	}
	require.NoError(t, store.Insert(ctx, e))

	var outcome, source string
	var amountIn int64
	row := pool.QueryRow(ctx,
		`SELECT outcome, source, amount_in FROM swap_events WHERE event_id = $1`, e.EventID)
	require.NoError(t, row.Scan(&outcome, &source, &amountIn))
	assert.Equal(t, domain.OutcomeSuccess, outcome)
	assert.Equal(t, domain.SourceOneInch, source)
	assert.Equal(t, int64(20_000), amountIn)
}

func TestSwapEventStoreDuplicateEventID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapEventStore(pool)
	ctx := context.Background()

	e := &domain.SwapEventRecord{
		EventID:   "33333333-3333-3333-3333-333333333333",
		EventType: domain.EventTypeQuote,
		Outcome:   domain.OutcomeFailed,
		Timestamp: 1700000000000,
	}
	require.NoError(t, store.Insert(ctx, e))

	err := store.Insert(ctx, e)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSwapEventStoreRejectsInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapEventStore(pool)
	assert.ErrorIs(t, store.Insert(context.Background(), nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(context.Background(), &domain.SwapEventRecord{}), storage.ErrInvalidInput)
}
