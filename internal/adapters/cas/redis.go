package cas

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	backend "github.com/redis/go-redis/v9"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*RedisStore)(nil)

// RedisStore implements ports.CacheStore on Redis, so that several machines can
// share one build cache.
//
// Entries are stored as JSON under <prefix>:entry:<digest>. A sorted set at
// <prefix>:index scores every digest by its last used generation.
type RedisStore struct {
	client *backend.Client
	prefix string
}

// NewRedisStore connects to the server described by cfg.
func NewRedisStore(cfg domain.RedisConfig) *RedisStore {
	return NewRedisStoreFromClient(backend.NewClient(&backend.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), cfg.Prefix)
}

// NewRedisStoreFromClient creates a store from an existing client.
func NewRedisStoreFromClient(client *backend.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = domain.ConfigBaseName
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) entryKey(digest string) string {
	return s.prefix + ":entry:" + digest
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":index"
}

func (s *RedisStore) generationKey() string {
	return s.prefix + ":generation"
}

// Load reads the indexed entries and the current generation.
func (s *RedisStore) Load(ctx context.Context) (domain.CacheSnapshot, error) {
	var snap domain.CacheSnapshot

	gen, err := s.client.Get(ctx, s.generationKey()).Result()
	switch {
	case errors.Is(err, backend.Nil):
	case err != nil:
		return snap, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	default:
		if snap.Generation, err = strconv.ParseInt(gen, 10, 64); err != nil {
			return snap, zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error())
		}
	}

	digests, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return snap, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	if len(digests) == 0 {
		return snap, nil
	}

	keys := make([]string, len(digests))
	for i, d := range digests {
		keys[i] = s.entryKey(d)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return snap, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a value, expired or removed externally.
			continue
		}
		var e domain.CacheEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return snap, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "key", keys[i])
		}
		snap.Entries = append(snap.Entries, e)
	}

	return snap, nil
}

// Save replaces the stored entries with snap. Entries absent from snap are
// removed from both the index and the keyspace.
func (s *RedisStore) Save(ctx context.Context, snap domain.CacheSnapshot) error {
	existing, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	keep := make(map[string]bool, len(snap.Entries))
	pipe := s.client.TxPipeline()

	for _, e := range snap.Entries {
		digest := e.Key.Digest()
		keep[digest] = true

		data, err := json.Marshal(e)
		if err != nil {
			return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
		}
		pipe.Set(ctx, s.entryKey(digest), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: float64(e.LastUsed), Member: digest})
	}

	for _, digest := range existing {
		if !keep[digest] {
			pipe.Del(ctx, s.entryKey(digest))
			pipe.ZRem(ctx, s.indexKey(), digest)
		}
	}

	pipe.Set(ctx, s.generationKey(), strconv.FormatInt(snap.Generation, 10), 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
