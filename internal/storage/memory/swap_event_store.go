// Package memory provides in-memory audit stores used when no database is
// configured and as the backends tests exercise handlers against.
package memory

import (
	"context"
	"sync"

	"swapgate/internal/domain"
	"swapgate/internal/storage"
)

// SwapEventStore is an in-memory implementation of storage.SwapEventStore.
type SwapEventStore struct {
	mu   sync.RWMutex
	data []*domain.SwapEventRecord
	keys map[string]bool
}

// NewSwapEventStore creates a new in-memory swap event store.
func NewSwapEventStore() *SwapEventStore {
	return &SwapEventStore{
		data: make([]*domain.SwapEventRecord, 0),
		keys: make(map[string]bool),
	}
}

var _ storage.SwapEventStore = (*SwapEventStore)(nil)

// Insert adds a new audit event. Returns ErrDuplicateKey if event_id exists.
func (s *SwapEventStore) Insert(_ context.Context, e *domain.SwapEventRecord) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys[e.EventID] {
		return storage.ErrDuplicateKey
	}

	// Store a copy
	record := *e
	s.data = append(s.data, &record)
	s.keys[e.EventID] = true

	return nil
}

// All returns a snapshot of every recorded event in insertion order.
func (s *SwapEventStore) All() []*domain.SwapEventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.SwapEventRecord, len(s.data))
	for i, e := range s.data {
		record := *e
		out[i] = &record
	}
	return out
}
