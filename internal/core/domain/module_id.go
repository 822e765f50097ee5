package domain

import (
	"path"
	"slices"
	"strings"
	"unique"
)

// ModuleID is a value object identifying a module within a build.
// It wraps a unique.Handle[string] holding the slash-separated path of the
// module relative to the project root, so identical identities compare in O(1).
type ModuleID struct {
	h unique.Handle[string]
}

// NewModuleID creates a ModuleID from a root-relative path.
// The path is cleaned and converted to forward slashes.
func NewModuleID(p string) ModuleID {
	p = strings.ReplaceAll(p, "\\", "/")
	return ModuleID{h: unique.Make(path.Clean(p))}
}

// String returns the underlying path.
func (id ModuleID) String() string {
	var zero unique.Handle[string]
	if id.h == zero {
		return ""
	}
	return id.h.Value()
}

// IsZero reports whether the id was never assigned.
func (id ModuleID) IsZero() bool {
	var zero unique.Handle[string]
	return id.h == zero
}

// Dir returns the directory of the module, relative to the project root.
func (id ModuleID) Dir() string {
	return path.Dir(id.String())
}

// Ext returns the file extension of the module, including the dot.
func (id ModuleID) Ext() string {
	return path.Ext(id.String())
}

// Compare orders ids lexically. It is suitable for slices.SortFunc.
func (id ModuleID) Compare(other ModuleID) int {
	return strings.Compare(id.String(), other.String())
}

// MarshalText implements encoding.TextMarshaler.
func (id ModuleID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ModuleID) UnmarshalText(text []byte) error {
	*id = NewModuleID(string(text))
	return nil
}

// SortModuleIDs sorts ids in place lexically.
func SortModuleIDs(ids []ModuleID) {
	slices.SortFunc(ids, ModuleID.Compare)
}
