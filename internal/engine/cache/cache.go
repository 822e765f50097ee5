// Package cache implements the build cache shared by the workers of a build.
package cache

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces the output for a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Stats reports cache activity since the last call to Begin.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// BuildCache maps cache keys to transform results.
//
// At most one computation runs per key: concurrent callers share a single
// flight, and a racing Store keeps the first entry. Errors are never cached.
type BuildCache struct {
	store      ports.CacheStore
	maxEntries int

	mu         sync.Mutex
	entries    map[string]domain.CacheEntry
	generation int64

	flights singleflight.Group
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates an empty cache persisted through store. maxEntries bounds the
// persisted entry count; zero means unbounded.
func New(store ports.CacheStore, maxEntries int) *BuildCache {
	return &BuildCache{
		store:      store,
		maxEntries: maxEntries,
		entries:    make(map[string]domain.CacheEntry),
	}
}

// Load replaces the in-memory state with the persisted snapshot.
func (c *BuildCache) Load(ctx context.Context) error {
	snap, err := c.store.Load(ctx)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheLoadFailed.Error())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]domain.CacheEntry, len(snap.Entries))
	for _, e := range snap.Entries {
		c.entries[e.Key.Digest()] = e
	}
	c.generation = snap.Generation
	return nil
}

// Begin starts a build pass: it advances the generation and resets the
// hit and miss counters. It returns the new generation.
func (c *BuildCache) Begin() int64 {
	c.hits.Store(0)
	c.misses.Store(0)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

// Generation returns the current build generation.
func (c *BuildCache) Generation() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Lookup returns the entry for key and marks it used in the current generation.
func (c *BuildCache) Lookup(key domain.CacheKey) (domain.CacheEntry, bool) {
	digest := key.Digest()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[digest]
	if !ok || e.Key != key {
		return domain.CacheEntry{}, false
	}
	if e.LastUsed != c.generation {
		e = e.Touch(c.generation)
		c.entries[digest] = e
	}
	return e, true
}

// Store records output for key unless an entry already exists, in which case
// the existing entry is returned and output is discarded.
func (c *BuildCache) Store(key domain.CacheKey, output []byte) domain.CacheEntry {
	digest := key.Digest()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[digest]; ok && e.Key == key {
		e = e.Touch(c.generation)
		c.entries[digest] = e
		return e
	}

	e := domain.CacheEntry{
		Key:        key,
		Output:     slices.Clone(output),
		OutputHash: domain.ContentHash(output),
		LastUsed:   c.generation,
	}
	c.entries[digest] = e
	return e
}

// GetOrCompute returns the entry for key, running compute on a miss. hit is
// false only for the caller whose compute produced the entry.
func (c *BuildCache) GetOrCompute(ctx context.Context, key domain.CacheKey, compute ComputeFunc) (domain.CacheEntry, bool, error) {
	if e, ok := c.Lookup(key); ok {
		c.hits.Add(1)
		return e, true, nil
	}

	computed := false
	v, err, _ := c.flights.Do(key.Digest(), func() (any, error) {
		if e, ok := c.Lookup(key); ok {
			return e, nil
		}
		out, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		computed = true
		return c.Store(key, out), nil
	})
	if err != nil {
		return domain.CacheEntry{}, false, err
	}

	if computed {
		c.misses.Add(1)
	} else {
		c.hits.Add(1)
	}
	return v.(domain.CacheEntry), !computed, nil
}

// Stats returns the counters of the current pass.
func (c *BuildCache) Stats() Stats {
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()

	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: n}
}

// Save evicts the least recently used entries beyond the configured bound
// and persists the rest.
func (c *BuildCache) Save(ctx context.Context) error {
	c.mu.Lock()
	entries := make([]domain.CacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}

	slices.SortFunc(entries, func(a, b domain.CacheEntry) int {
		return cmp.Or(
			cmp.Compare(b.LastUsed, a.LastUsed),
			strings.Compare(a.Key.Digest(), b.Key.Digest()),
		)
	})
	if c.maxEntries > 0 && len(entries) > c.maxEntries {
		for _, e := range entries[c.maxEntries:] {
			delete(c.entries, e.Key.Digest())
		}
		entries = entries[:c.maxEntries]
	}
	snap := domain.CacheSnapshot{Generation: c.generation, Entries: entries}
	c.mu.Unlock()

	if err := c.store.Save(ctx, snap); err != nil {
		return zerr.Wrap(err, domain.ErrCacheSaveFailed.Error())
	}
	return nil
}

// Close releases the underlying store.
func (c *BuildCache) Close() error {
	return c.store.Close()
}
