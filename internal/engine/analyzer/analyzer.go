// Package analyzer computes reachability, cycles and discovery order of a
// module graph.
package analyzer

import (
	"slices"

	"go.trai.ch/pack/internal/core/domain"
)

// Analyze inspects graph from the given entries. It returns the analysis and
// one warning per cycle and per unreachable module. Entries without a
// resolved root are ignored.
func Analyze(graph *domain.ModuleGraph, entries []domain.Entry) (*domain.Analysis, []domain.Diagnostic) {
	sorted := slices.Clone(entries)
	domain.SortEntries(sorted)

	an := domain.NewAnalysis()
	discover(graph, sorted, an)
	reach(graph, sorted, an)
	components(graph, an)

	var diags []domain.Diagnostic
	for _, idx := range an.Cycles {
		members := an.Components[idx]
		entry, path, _ := an.PathTo(members[0])
		diags = append(diags, domain.Diagnostic{
			Kind:    domain.KindCycleWarning,
			Module:  members[0],
			Members: members,
			Entry:   entry,
			Path:    path,
			Message: "circular dependency",
		})
	}

	for m := range graph.Modules() {
		if !an.IsReachable(m.ID) {
			an.Unreachable = append(an.Unreachable, m.ID)
		}
	}
	domain.SortModuleIDs(an.Unreachable)
	for _, id := range an.Unreachable {
		diags = append(diags, domain.Diagnostic{
			Kind:    domain.KindUnreachableWarning,
			Module:  id,
			Message: "module is not reachable from any entry",
		})
	}

	return an, diags
}

func hasRoot(graph *domain.ModuleGraph, e domain.Entry) bool {
	if e.Root.IsZero() {
		return false
	}
	_, ok := graph.Module(e.Root)
	return ok
}

// discover runs one breadth-first traversal seeded with the entry roots in
// name order, so discovery indexes and parent paths do not depend on the
// order modules were built in.
func discover(graph *domain.ModuleGraph, entries []domain.Entry, an *domain.Analysis) {
	origin := make(map[domain.ModuleID]string)
	var queue []domain.ModuleID

	for _, e := range entries {
		if !hasRoot(graph, e) {
			continue
		}
		if an.RecordDiscovery(e.Root, domain.ModuleID{}, e.Name) {
			origin[e.Root] = e.Name
			queue = append(queue, e.Root)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, dep := range graph.Dependencies(cur) {
			if an.RecordDiscovery(dep, cur, origin[cur]) {
				origin[dep] = origin[cur]
				queue = append(queue, dep)
			}
		}
	}
}

// reach computes the reachable set of every entry by depth-first traversal
// and the sorted entry set of every reachable module.
func reach(graph *domain.ModuleGraph, entries []domain.Entry, an *domain.Analysis) {
	for _, e := range entries {
		seen := make(map[domain.ModuleID]bool)
		an.Reachable[e.Name] = seen
		if !hasRoot(graph, e) {
			continue
		}

		stack := []domain.ModuleID{e.Root}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[cur] {
				continue
			}
			seen[cur] = true
			an.EntrySets[cur] = append(an.EntrySets[cur], e.Name)

			deps := graph.Dependencies(cur)
			for i := len(deps) - 1; i >= 0; i-- {
				if !seen[deps[i]] {
					stack = append(stack, deps[i])
				}
			}
		}
	}
}

// byDiscovery orders reachable modules by discovery index, followed by
// unreachable modules by identity.
func byDiscovery(an *domain.Analysis) func(a, b domain.ModuleID) int {
	return func(a, b domain.ModuleID) int {
		ia, ra := an.Discovery[a]
		ib, rb := an.Discovery[b]
		switch {
		case ra && rb:
			return ia - ib
		case ra:
			return -1
		case rb:
			return 1
		default:
			return a.Compare(b)
		}
	}
}

type tarjan struct {
	graph   *domain.ModuleGraph
	index   map[domain.ModuleID]int
	lowlink map[domain.ModuleID]int
	onStack map[domain.ModuleID]bool
	stack   []domain.ModuleID
	next    int
	result  [][]domain.ModuleID
}

func (t *tarjan) visit(v domain.ModuleID) {
	t.index[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph.Dependencies(v) {
		if _, visited := t.index[w]; !visited {
			t.visit(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}

	var component []domain.ModuleID
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		component = append(component, w)
		if w == v {
			break
		}
	}
	t.result = append(t.result, component)
}

// components computes the strongly connected components with Tarjan's
// algorithm and records which of them are cycles.
func components(graph *domain.ModuleGraph, an *domain.Analysis) {
	order := make([]domain.ModuleID, 0, graph.Len())
	for m := range graph.Modules() {
		order = append(order, m.ID)
	}
	cmpModules := byDiscovery(an)
	slices.SortFunc(order, cmpModules)

	t := &tarjan{
		graph:   graph,
		index:   make(map[domain.ModuleID]int),
		lowlink: make(map[domain.ModuleID]int),
		onStack: make(map[domain.ModuleID]bool),
	}
	for _, id := range order {
		if _, visited := t.index[id]; !visited {
			t.visit(id)
		}
	}

	for _, c := range t.result {
		slices.SortFunc(c, cmpModules)
	}
	slices.SortFunc(t.result, func(a, b []domain.ModuleID) int {
		return cmpModules(a[0], b[0])
	})

	an.Components = t.result
	for i, c := range t.result {
		for _, id := range c {
			an.ComponentOf[id] = i
		}
		if !an.IsReachable(c[0]) {
			continue
		}
		if len(c) > 1 || slices.Contains(graph.Dependencies(c[0]), c[0]) {
			an.Cycles = append(an.Cycles, i)
		}
	}
}

// Annotate fills the entry and path of module diagnostics that do not carry
// one yet.
func Annotate(an *domain.Analysis, diags []domain.Diagnostic) {
	for i := range diags {
		d := &diags[i]
		if d.Entry != "" || d.Module.IsZero() {
			continue
		}
		if entry, path, ok := an.PathTo(d.Module); ok {
			d.Entry = entry
			d.Path = path
		}
	}
}
