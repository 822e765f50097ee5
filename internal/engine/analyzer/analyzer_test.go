package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/engine/analyzer"
)

type edge struct{ from, to string }

func id(s string) domain.ModuleID {
	return domain.NewModuleID(s)
}

// newGraph adds modules in the given order, then edges in the given order.
func newGraph(t *testing.T, modules []string, edges []edge, entries map[string]string) (*domain.ModuleGraph, []domain.Entry) {
	t.Helper()

	g := domain.NewModuleGraph()
	for _, m := range modules {
		require.NoError(t, g.AddModule(&domain.Module{ID: id(m)}))
	}
	for _, e := range edges {
		g.AddEdge(id(e.from), id(e.to), "./"+e.to)
	}

	var list []domain.Entry
	for name, root := range entries {
		list = append(list, domain.Entry{Name: name, Specifier: "./" + root, Root: id(root)})
	}
	g.SetEntries(list)
	return g, g.Entries()
}

func TestAnalyze_SharedModule(t *testing.T) {
	t.Parallel()

	g, entries := newGraph(t,
		[]string{"a.js", "b.js", "c.js"},
		[]edge{{"a.js", "c.js"}, {"b.js", "c.js"}},
		map[string]string{"main": "a.js", "other": "b.js"},
	)

	an, diags := analyzer.Analyze(g, entries)

	assert.Empty(t, diags)
	assert.Equal(t, map[domain.ModuleID]int{id("a.js"): 0, id("b.js"): 1, id("c.js"): 2}, an.Discovery)
	assert.Equal(t, []string{"main", "other"}, an.EntrySets[id("c.js")])
	assert.Equal(t, []string{"main"}, an.EntrySets[id("a.js")])
	assert.True(t, an.Reachable["other"][id("c.js")])
	assert.False(t, an.Reachable["other"][id("a.js")])
	assert.Empty(t, an.Cycles)
	assert.Len(t, an.Components, 3)
}

func TestAnalyze_CycleIsWarning(t *testing.T) {
	t.Parallel()

	g, entries := newGraph(t,
		[]string{"a.js", "b.js"},
		[]edge{{"a.js", "b.js"}, {"b.js", "a.js"}},
		map[string]string{"main": "a.js"},
	)

	an, diags := analyzer.Analyze(g, entries)

	require.Len(t, an.Cycles, 1)
	assert.Equal(t, []domain.ModuleID{id("a.js"), id("b.js")}, an.Components[an.Cycles[0]])
	assert.Equal(t, id("a.js"), an.Primary(id("b.js")))
	assert.True(t, an.InCycle(id("b.js")))

	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, domain.KindCycleWarning, d.Kind)
	assert.False(t, d.IsError())
	assert.Equal(t, []domain.ModuleID{id("a.js"), id("b.js")}, d.Members)
	assert.Equal(t, "main", d.Entry)
	assert.Equal(t, "cycle: a.js ⇄ b.js (via main → a.js)", d.String())
}

func TestAnalyze_SelfLoopIsCycle(t *testing.T) {
	t.Parallel()

	g, entries := newGraph(t,
		[]string{"a.js", "b.js"},
		[]edge{{"a.js", "a.js"}, {"a.js", "b.js"}},
		map[string]string{"main": "a.js"},
	)

	an, diags := analyzer.Analyze(g, entries)

	require.Len(t, an.Cycles, 1)
	assert.Equal(t, []domain.ModuleID{id("a.js")}, an.Components[an.Cycles[0]])
	assert.False(t, an.InCycle(id("b.js")))
	require.Len(t, diags, 1)
	assert.Equal(t, domain.KindCycleWarning, diags[0].Kind)
}

func TestAnalyze_Unreachable(t *testing.T) {
	t.Parallel()

	g, entries := newGraph(t,
		[]string{"a.js", "x.js", "y.js"},
		[]edge{{"x.js", "y.js"}, {"y.js", "x.js"}},
		map[string]string{"main": "a.js"},
	)

	an, diags := analyzer.Analyze(g, entries)

	assert.Equal(t, []domain.ModuleID{id("x.js"), id("y.js")}, an.Unreachable)
	assert.Empty(t, an.Cycles, "unreachable cycles produce no cycle warning")
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, domain.KindUnreachableWarning, d.Kind)
	}
	assert.Equal(t, "unreachable: x.js", diags[0].String())
}

func TestAnalyze_ShortestPath(t *testing.T) {
	t.Parallel()

	g, entries := newGraph(t,
		[]string{"a.js", "b.js", "c.js", "d.js"},
		[]edge{{"a.js", "b.js"}, {"b.js", "c.js"}, {"c.js", "d.js"}, {"a.js", "d.js"}},
		map[string]string{"main": "a.js"},
	)

	an, _ := analyzer.Analyze(g, entries)

	entry, path, ok := an.PathTo(id("d.js"))
	require.True(t, ok)
	assert.Equal(t, "main", entry)
	assert.Equal(t, []domain.ModuleID{id("a.js"), id("d.js")}, path)
}

func TestAnalyze_DiscoveryIndependentOfInsertionOrder(t *testing.T) {
	t.Parallel()

	edges := []edge{{"a.js", "c.js"}, {"a.js", "b.js"}, {"b.js", "d.js"}, {"z.js", "d.js"}}
	entries := map[string]string{"main": "a.js", "admin": "z.js"}

	g1, e1 := newGraph(t, []string{"a.js", "b.js", "c.js", "d.js", "z.js"}, edges, entries)
	g2, e2 := newGraph(t, []string{"d.js", "z.js", "c.js", "b.js", "a.js"}, edges, entries)

	an1, _ := analyzer.Analyze(g1, e1)
	an2, _ := analyzer.Analyze(g2, e2)

	assert.Equal(t, an1.Discovery, an2.Discovery)
	assert.Equal(t, an1.Components, an2.Components)
	// admin sorts first, so its root and its dependency are discovered first.
	assert.Equal(t, 0, an1.Discovery[id("z.js")])
	assert.Equal(t, 1, an1.Discovery[id("a.js")])
	assert.Equal(t, 2, an1.Discovery[id("d.js")])
}

func TestAnalyze_UnresolvedEntryIsIgnored(t *testing.T) {
	t.Parallel()

	g := domain.NewModuleGraph()
	require.NoError(t, g.AddModule(&domain.Module{ID: id("a.js")}))
	entries := []domain.Entry{{Name: "main", Root: id("a.js")}, {Name: "broken", Specifier: "./missing"}}

	an, diags := analyzer.Analyze(g, entries)

	assert.Empty(t, diags)
	assert.Empty(t, an.Reachable["broken"])
	assert.True(t, an.IsReachable(id("a.js")))
}

func TestAnnotate(t *testing.T) {
	t.Parallel()

	g, entries := newGraph(t,
		[]string{"a.js", "b.js"},
		[]edge{{"a.js", "b.js"}},
		map[string]string{"main": "a.js"},
	)
	an, _ := analyzer.Analyze(g, entries)

	diags := []domain.Diagnostic{
		{Kind: domain.KindResolutionError, Module: id("b.js"), Specifier: "./missing", Message: "module not found"},
		{Kind: domain.KindResolutionError, Entry: "other", Specifier: "./nope", Message: "module not found"},
	}
	analyzer.Annotate(an, diags)

	assert.Equal(t, `main → a.js → b.js → "./missing": module not found`, diags[0].String())
	assert.Equal(t, `other → "./nope": module not found`, diags[1].String())
}
