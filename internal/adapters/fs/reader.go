// Package fs provides file system adapters for reading, resolving and walking module sources.
package fs

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceReader = (*Reader)(nil)

// Reader reads module sources relative to a project root.
type Reader struct {
	root string
}

// NewReader creates a new Reader rooted at root.
func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// Read returns the raw content of the module.
func (r *Reader) Read(ctx context.Context, id domain.ModuleID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(r.root, filepath.FromSlash(id.String()))
	data, err := os.ReadFile(path) //nolint:gosec // Path is derived from a resolved module id
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "module", id.String())
	}
	return data, nil
}
