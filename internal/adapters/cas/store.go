// Package cas implements the persistent stores backing the build cache.
package cas

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*FileStore)(nil)

// FileStore implements ports.CacheStore using a flat JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the cache file inside dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(filepath.Clean(dir), domain.CacheFileName)}
}

// Path returns the path of the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot. A missing or empty file yields an empty snapshot.
func (s *FileStore) Load(_ context.Context) (domain.CacheSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.CacheSnapshot{}, nil
		}
		return domain.CacheSnapshot{}, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	if len(data) == 0 {
		return domain.CacheSnapshot{}, nil
	}

	var snap domain.CacheSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.CacheSnapshot{}, zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error())
	}

	return snap, nil
}

// Save replaces the file with snap. The file is written to a temporary sibling
// first so that an interrupted save never leaves a truncated cache.
func (s *FileStore) Save(_ context.Context, snap domain.CacheSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, domain.CacheFileName+".*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
