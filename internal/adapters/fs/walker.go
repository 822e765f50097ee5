package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
)

// Walker walks project directories.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkDirs yields every directory under root, root included, skipping VCS
// metadata and directories whose base name is in ignores.
func (w *Walker) WalkDirs(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Unreadable entries are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && w.shouldSkipDir(d.Name(), ignores) {
				return filepath.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// shouldSkipDir reports whether a directory name is excluded from walking.
func (w *Walker) shouldSkipDir(name string, ignores []string) bool {
	if name == ".git" || name == ".jj" {
		return true
	}
	return slices.ContainsFunc(ignores, func(pattern string) bool {
		matched, _ := filepath.Match(pattern, name)
		return matched
	})
}
