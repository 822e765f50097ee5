package ports

import (
	"context"

	"go.trai.ch/pack/internal/core/domain"
)

// CacheStore persists the build cache across process invocations.
//
//go:generate mockgen -source=cache_store.go -destination=mocks/mock_cache_store.go -package=mocks
type CacheStore interface {
	// Load returns the persisted snapshot. An empty store yields an empty snapshot.
	Load(ctx context.Context) (domain.CacheSnapshot, error)

	// Save replaces the persisted state with snap.
	Save(ctx context.Context, snap domain.CacheSnapshot) error

	// Close releases the resources held by the store.
	Close() error
}
