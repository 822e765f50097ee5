// Package session holds the state shared by the passes of one build
// invocation.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/pack/internal/engine/cache"
)

type memoKey struct {
	from domain.ModuleID
	spec string
}

type resolution struct {
	id  domain.ModuleID
	err error
}

// Session identifies one build invocation. It memoizes resolutions and
// carries the build cache.
type Session struct {
	ID    string
	Cache *cache.BuildCache

	resolver ports.Resolver
	memo     sync.Map
}

// New creates a session with a fresh identifier.
func New(resolver ports.Resolver, c *cache.BuildCache) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Cache:    c,
		resolver: resolver,
	}
}

// Resolve resolves spec from the importer. Results, including misses, are
// memoized for the lifetime of the session.
func (s *Session) Resolve(ctx context.Context, from domain.ModuleID, spec string) (domain.ModuleID, error) {
	key := memoKey{from: from, spec: spec}
	if v, ok := s.memo.Load(key); ok {
		r := v.(resolution)
		return r.id, r.err
	}

	id, err := s.resolver.Resolve(ctx, from, spec)
	if err != nil && ctx.Err() != nil {
		return id, err
	}
	v, _ := s.memo.LoadOrStore(key, resolution{id: id, err: err})
	r := v.(resolution)
	return r.id, r.err
}
