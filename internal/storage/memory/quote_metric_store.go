package memory

import (
	"context"
	"sync"

	"swapgate/internal/domain"
	"swapgate/internal/storage"
)

// QuoteMetricStore is an in-memory implementation of storage.QuoteMetricStore.
type QuoteMetricStore struct {
	mu   sync.RWMutex
	data []*domain.QuoteMetric
}

// NewQuoteMetricStore creates a new in-memory quote metric store.
func NewQuoteMetricStore() *QuoteMetricStore {
	return &QuoteMetricStore{data: make([]*domain.QuoteMetric, 0)}
}

var _ storage.QuoteMetricStore = (*QuoteMetricStore)(nil)

// Insert adds a quote analytics row.
func (s *QuoteMetricStore) Insert(_ context.Context, m *domain.QuoteMetric) error {
	if m == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metric := *m
	s.data = append(s.data, &metric)
	return nil
}

// All returns a snapshot of every recorded metric in insertion order.
func (s *QuoteMetricStore) All() []*domain.QuoteMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.QuoteMetric, len(s.data))
	for i, m := range s.data {
		metric := *m
		out[i] = &metric
	}
	return out
}
