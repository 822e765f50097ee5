// Package planner groups reachable modules into entry and shared chunks.
package planner

import (
	"container/heap"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/pack/internal/core/domain"
)

// Plan assigns every reachable module to chunks under policy and orders the
// modules of each chunk dependencies first.
//
// Shared chunks come first, sorted by name, followed by one entry chunk per
// resolved entry in entry name order. A module that is the root of some entry,
// or in a cycle with one, is placed in every entry chunk reaching it, so each
// entry chunk holds its own root.
func Plan(graph *domain.ModuleGraph, an *domain.Analysis, policy domain.SplitPolicy) []domain.Chunk {
	order := emissionOrder(graph, an)

	entryChunks := make(map[string]*domain.Chunk)
	rootComponents := make(map[int]bool)
	var entryNames []string
	for _, e := range graph.Entries() {
		if e.Root.IsZero() || !an.IsReachable(e.Root) {
			continue
		}
		entryChunks[e.Name] = &domain.Chunk{Name: e.Name, Kind: domain.ChunkEntry, Entry: e.Name, Root: e.Root}
		rootComponents[an.ComponentOf[e.Root]] = true
		entryNames = append(entryNames, e.Name)
	}

	shared := make(map[string]*domain.Chunk)
	imports := make(map[string]map[string]bool)

	for _, id := range order {
		set := an.EntrySets[an.Primary(id)]

		// Entry roots and their cycle groups are never split out of the entry
		// chunks reaching them.
		if rootComponents[an.ComponentOf[id]] || !policy.Enabled || len(set) < policy.MinEntries {
			for _, entry := range set {
				if c, ok := entryChunks[entry]; ok {
					c.Modules = append(c.Modules, id)
				}
			}
			continue
		}

		name := sharedName(set, policy.Mode)
		c, ok := shared[name]
		if !ok {
			c = &domain.Chunk{Name: name, Kind: domain.ChunkShared}
			shared[name] = c
		}
		c.Modules = append(c.Modules, id)

		for _, entry := range set {
			if imports[entry] == nil {
				imports[entry] = make(map[string]bool)
			}
			imports[entry][name] = true
		}
	}

	chunks := make([]domain.Chunk, 0, len(shared)+len(entryChunks))
	for _, name := range slices.Sorted(maps.Keys(shared)) {
		chunks = append(chunks, *shared[name])
	}
	for _, name := range entryNames {
		c := entryChunks[name]
		c.Imports = slices.Sorted(maps.Keys(imports[name]))
		chunks = append(chunks, *c)
	}
	return chunks
}

// sharedName names the shared chunk of an entry set.
func sharedName(set []string, mode domain.SplitMode) string {
	if mode == domain.SplitSingle {
		return domain.SharedChunkPrefix
	}
	return domain.SharedChunkPrefix + "~" + strings.Join(set, "~")
}

// emissionOrder returns every reachable module in a stable topological
// order of the component condensation, dependencies first. Ready components
// are taken by lowest discovery index of their primary member, then by
// module identity; members of a component follow discovery order.
func emissionOrder(graph *domain.ModuleGraph, an *domain.Analysis) []domain.ModuleID {
	pending := make(map[int]int)
	dependents := make(map[int][]int)

	for idx, members := range an.Components {
		if !an.IsReachable(members[0]) {
			continue
		}
		deps := make(map[int]bool)
		for _, m := range members {
			for _, d := range graph.Dependencies(m) {
				if dc := an.ComponentOf[d]; dc != idx {
					deps[dc] = true
				}
			}
		}
		pending[idx] = len(deps)
		for dc := range deps {
			dependents[dc] = append(dependents[dc], idx)
		}
	}

	ready := &readyQueue{an: an}
	for idx, n := range pending {
		if n == 0 {
			heap.Push(ready, idx)
		}
	}

	var order []domain.ModuleID
	for ready.Len() > 0 {
		idx := heap.Pop(ready).(int)
		order = append(order, an.Components[idx]...)
		for _, dep := range dependents[idx] {
			pending[dep]--
			if pending[dep] == 0 {
				heap.Push(ready, dep)
			}
		}
	}
	return order
}

// readyQueue is a min-heap of component indexes.
type readyQueue struct {
	an    *domain.Analysis
	items []int
}

func (q *readyQueue) Len() int { return len(q.items) }

func (q *readyQueue) Less(i, j int) bool {
	a := q.an.Components[q.items[i]][0]
	b := q.an.Components[q.items[j]][0]
	if da, db := q.an.Discovery[a], q.an.Discovery[b]; da != db {
		return da < db
	}
	return a.Compare(b) < 0
}

func (q *readyQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *readyQueue) Push(x any) { q.items = append(q.items, x.(int)) }

func (q *readyQueue) Pop() any {
	n := len(q.items)
	x := q.items[n-1]
	q.items = q.items[:n-1]
	return x
}
