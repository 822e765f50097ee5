package domain

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// DiagnosticKind classifies a build diagnostic.
type DiagnosticKind string

const (
	// KindResolutionError marks a specifier that could not be mapped to a module.
	KindResolutionError DiagnosticKind = "resolution_error"
	// KindTransformError marks a module whose loader chain failed.
	KindTransformError DiagnosticKind = "transform_error"
	// KindCycleWarning marks a strongly-connected group of modules.
	KindCycleWarning DiagnosticKind = "cycle_warning"
	// KindUnreachableWarning marks a module no entry reaches.
	KindUnreachableWarning DiagnosticKind = "unreachable_warning"
)

func (k DiagnosticKind) rank() int {
	switch k {
	case KindResolutionError:
		return 0
	case KindTransformError:
		return 1
	case KindCycleWarning:
		return 2
	default:
		return 3
	}
}

// Diagnostic is a single error or warning recorded during a build.
type Diagnostic struct {
	Kind DiagnosticKind `json:"kind"`
	// Module is the affected module. For resolution errors it is the importer.
	Module ModuleID `json:"module"`
	// Specifier is the unresolved specifier of a resolution error.
	Specifier string `json:"specifier,omitzero"`
	// Members lists the modules of a cycle.
	Members []ModuleID `json:"members,omitzero"`
	// Entry and Path form the chain entry -> ... -> Module.
	Entry string     `json:"entry,omitzero"`
	Path  []ModuleID `json:"path,omitzero"`
	// Message describes the cause.
	Message string `json:"message"`
	// Err is the underlying error, if any.
	Err error `json:"-"`
}

// IsError reports whether the diagnostic fails the build.
func (d Diagnostic) IsError() bool {
	return d.Kind == KindResolutionError || d.Kind == KindTransformError
}

// Chain renders the entry -> ... -> module chain.
func (d Diagnostic) Chain() string {
	if d.Entry == "" {
		return d.Module.String()
	}

	parts := make([]string, 0, len(d.Path)+2)
	parts = append(parts, d.Entry)
	for _, id := range d.Path {
		parts = append(parts, id.String())
	}
	if d.Kind == KindResolutionError {
		parts = append(parts, strconv.Quote(d.Specifier))
	}
	return strings.Join(parts, " → ")
}

// String renders the diagnostic as a single report line.
func (d Diagnostic) String() string {
	switch d.Kind {
	case KindCycleWarning:
		members := make([]string, len(d.Members))
		for i, m := range d.Members {
			members[i] = m.String()
		}
		return "cycle: " + strings.Join(members, " ⇄ ") + " (via " + d.Chain() + ")"
	case KindUnreachableWarning:
		return "unreachable: " + d.Module.String()
	default:
		return d.Chain() + ": " + d.Message
	}
}

// Report collects the diagnostics of a build pass.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Add appends diagnostics to the report.
func (r *Report) Add(d ...Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d...)
}

// Failed reports whether at least one resolution or transform error was recorded.
func (r *Report) Failed() bool {
	return slices.ContainsFunc(r.Diagnostics, Diagnostic.IsError)
}

// Errors returns the diagnostics that fail the build.
func (r *Report) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the informational diagnostics.
func (r *Report) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if !d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of diagnostics of the given kind.
func (r *Report) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Sort orders diagnostics by kind, module and specifier.
func (r *Report) Sort() {
	slices.SortStableFunc(r.Diagnostics, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Kind.rank(), b.Kind.rank()),
			a.Module.Compare(b.Module),
			strings.Compare(a.Specifier, b.Specifier),
		)
	})
}
