package store

import (
	"context"
	"sync"

	"github.com/i474232898/air-quality-etl/internal/airquality"
)

// MemoryStore is a concurrency-safe in-memory Store used by tests and
// dry runs. It keeps the same append-only, no-dedup semantics as the
// Postgres store.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []airquality.ObservationRow
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// EnsureSchema is a no-op for the in-memory backend.
func (s *MemoryStore) EnsureSchema(ctx context.Context) error {
	return nil
}

// InsertRows appends a batch.
func (s *MemoryStore) InsertRows(ctx context.Context, rows []airquality.ObservationRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

// FetchAll returns a copy of everything inserted so far, in insert order.
func (s *MemoryStore) FetchAll(ctx context.Context) ([]airquality.ObservationRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]airquality.ObservationRow, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() {}

// Len reports the number of persisted rows.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
