package domain

import (
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Module is a single source unit taking part in a build.
type Module struct {
	// ID is the module identity, unique within a build.
	ID ModuleID
	// Source is the raw content. It is never modified once assigned.
	Source []byte
	// SourceHash is the content hash of Source.
	SourceHash string
	// Specifiers are the declared dependency specifiers in source order.
	Specifiers []string
	// Chain is the fingerprint of the transform chain selected for the module.
	Chain string
	// Output is the transformed content, populated after the transform task.
	Output []byte
	// OutputHash is the content hash of Output.
	OutputHash string
	// Failed is set when the transform chain failed for this module.
	Failed bool
}

// Edge is a resolved dependency between two modules.
type Edge struct {
	From      ModuleID
	To        ModuleID
	Specifier string
}

// Entry is a named root of a reachability traversal.
type Entry struct {
	// Name is the chunk name of the entry.
	Name string
	// Specifier is the entry module as written in configuration.
	Specifier string
	// Root is the resolved entry module. It is zero if resolution failed.
	Root ModuleID
}

var entryNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateEntries checks that entries are non-empty, uniquely and validly named.
func ValidateEntries(entries []Entry) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !entryNamePattern.MatchString(e.Name) {
			return zerr.With(zerr.Wrap(ErrInvalidEntryName, "invalid entry"), "entry", e.Name)
		}
		if seen[e.Name] {
			return zerr.With(zerr.Wrap(ErrDuplicateEntry, "invalid entry"), "entry", e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// SortEntries orders entries by name.
func SortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
}
