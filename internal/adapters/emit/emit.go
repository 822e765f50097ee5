// Package emit writes finalized chunks to their destination.
package emit

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Emitter = (*Dir)(nil)
	_ ports.Emitter = (*Memory)(nil)
)

// Dir writes output files below a directory.
type Dir struct {
	root string
}

// NewDir creates an emitter writing into root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Emit writes data to name, creating parent directories as needed.
// The file is written to a temporary sibling and renamed into place.
func (d *Dir) Emit(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(d.root, filepath.FromSlash(name))
	if rel, err := filepath.Rel(d.root, target); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return zerr.With(zerr.Wrap(domain.ErrPathOutsideRoot, domain.ErrEmitFailed.Error()), "file", name)
	}

	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrEmitFailed.Error()), "file", name)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".emit-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrEmitFailed.Error()), "file", name)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrEmitFailed.Error()), "file", name)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrEmitFailed.Error()), "file", name)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrEmitFailed.Error()), "file", name)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrEmitFailed.Error()), "file", name)
	}
	return nil
}

// Memory keeps emitted files in memory. It is used for dry runs and tests.
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemory creates an empty in-memory emitter.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// Emit stores a copy of data under name.
func (m *Memory) Emit(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = slices.Clone(data)
	return nil
}

// File returns the content emitted under name.
func (m *Memory) File(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	return data, ok
}

// Names returns the emitted file names in sorted order.
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
