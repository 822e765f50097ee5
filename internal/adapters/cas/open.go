package cas

import (
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

// Open creates the store selected by cfg.Backend.
func Open(cfg domain.CacheConfig) (ports.CacheStore, error) {
	switch cfg.Backend {
	case domain.CacheBackendFile, "":
		return NewFileStore(cfg.Dir), nil
	case domain.CacheBackendSQLite:
		return NewSQLiteStore(cfg.Dir)
	case domain.CacheBackendRedis:
		return NewRedisStore(cfg.Redis), nil
	case domain.CacheBackendMemory:
		return NewMemoryStore(), nil
	case domain.CacheBackendNone:
		return Discard{}, nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownCacheBackend, "cannot open cache store"), "backend", cfg.Backend)
	}
}
