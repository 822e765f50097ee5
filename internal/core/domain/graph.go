// Package domain contains the core domain models of the bundler: modules,
// the module graph, chunks, cache entries and build diagnostics.
package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// ModuleGraph is the directed graph of modules discovered during one build pass.
// Cycles are ordinary edges; algorithms over the graph must tolerate them.
type ModuleGraph struct {
	modules    map[ModuleID]*Module
	order      []ModuleID
	edges      map[ModuleID][]Edge
	depMaps    map[ModuleID]map[string]ModuleID
	dependents map[ModuleID][]ModuleID
	entries    []Entry
	edgeCount  int
}

// NewModuleGraph creates a new empty ModuleGraph.
func NewModuleGraph() *ModuleGraph {
	return &ModuleGraph{
		modules:    make(map[ModuleID]*Module),
		edges:      make(map[ModuleID][]Edge),
		depMaps:    make(map[ModuleID]map[string]ModuleID),
		dependents: make(map[ModuleID][]ModuleID),
	}
}

// AddModule adds a module to the graph.
// It returns an error if a module with the same identity already exists.
func (g *ModuleGraph) AddModule(m *Module) error {
	if _, exists := g.modules[m.ID]; exists {
		return zerr.With(zerr.Wrap(ErrModuleAlreadyExists, "cannot add module"), "module", m.ID.String())
	}
	g.modules[m.ID] = m
	g.order = append(g.order, m.ID)
	return nil
}

// Module returns the module with the given identity.
func (g *ModuleGraph) Module(id ModuleID) (*Module, bool) {
	m, ok := g.modules[id]
	return m, ok
}

// Len returns the number of modules in the graph.
func (g *ModuleGraph) Len() int {
	return len(g.modules)
}

// EdgeCount returns the number of deduplicated edges in the graph.
func (g *ModuleGraph) EdgeCount() int {
	return g.edgeCount
}

// Modules yields modules in insertion order.
func (g *ModuleGraph) Modules() iter.Seq[*Module] {
	return func(yield func(*Module) bool) {
		for _, id := range g.order {
			if !yield(g.modules[id]) {
				return
			}
		}
	}
}

// AddEdge records that specifier in from resolved to to.
// Different specifiers resolving to the same target collapse into a single
// graph edge; every specifier is still kept in the module's dependency map.
func (g *ModuleGraph) AddEdge(from, to ModuleID, specifier string) {
	deps, ok := g.depMaps[from]
	if !ok {
		deps = make(map[string]ModuleID)
		g.depMaps[from] = deps
	}
	deps[specifier] = to

	for _, e := range g.edges[from] {
		if e.To == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], Edge{From: from, To: to, Specifier: specifier})
	g.dependents[to] = append(g.dependents[to], from)
	g.edgeCount++
}

// Edges returns the outgoing edges of id in declaration order.
func (g *ModuleGraph) Edges(id ModuleID) []Edge {
	return g.edges[id]
}

// Dependencies returns the distinct dependencies of id in declaration order.
func (g *ModuleGraph) Dependencies(id ModuleID) []ModuleID {
	edges := g.edges[id]
	deps := make([]ModuleID, len(edges))
	for i, e := range edges {
		deps[i] = e.To
	}
	return deps
}

// Dependents returns the modules that depend on id.
func (g *ModuleGraph) Dependents(id ModuleID) []ModuleID {
	return g.dependents[id]
}

// DependencyMap returns the specifier to module mapping of id.
func (g *ModuleGraph) DependencyMap(id ModuleID) map[string]ModuleID {
	return g.depMaps[id]
}

// SetEntries records the resolved entries of the build, sorted by name.
func (g *ModuleGraph) SetEntries(entries []Entry) {
	g.entries = append([]Entry(nil), entries...)
	SortEntries(g.entries)
}

// Entries returns the entries of the build sorted by name.
func (g *ModuleGraph) Entries() []Entry {
	return g.entries
}
