package cas

import (
	"context"
	"slices"
	"sync"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
)

var (
	_ ports.CacheStore = (*MemoryStore)(nil)
	_ ports.CacheStore = Discard{}
)

// MemoryStore keeps the snapshot for the lifetime of the process.
type MemoryStore struct {
	mu   sync.Mutex
	snap domain.CacheSnapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored snapshot.
func (s *MemoryStore) Load(_ context.Context) (domain.CacheSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CacheSnapshot{Generation: s.snap.Generation, Entries: slices.Clone(s.snap.Entries)}, nil
}

// Save replaces the stored snapshot with a copy of snap.
func (s *MemoryStore) Save(_ context.Context, snap domain.CacheSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = domain.CacheSnapshot{Generation: snap.Generation, Entries: slices.Clone(snap.Entries)}
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Discard persists nothing. It backs the "none" cache backend.
type Discard struct{}

// Load always returns an empty snapshot.
func (Discard) Load(context.Context) (domain.CacheSnapshot, error) {
	return domain.CacheSnapshot{}, nil
}

// Save drops snap.
func (Discard) Save(context.Context, domain.CacheSnapshot) error {
	return nil
}

// Close is a no-op.
func (Discard) Close() error {
	return nil
}
