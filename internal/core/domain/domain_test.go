package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/core/domain"
)

func TestModuleID_Normalizes(t *testing.T) {
	t.Parallel()

	a := domain.NewModuleID("src/./lib/../a.js")
	b := domain.NewModuleID("src\\a.js")

	assert.Equal(t, "src/a.js", a.String())
	assert.Equal(t, a, b)
	assert.Equal(t, "src", a.Dir())
	assert.Equal(t, ".js", a.Ext())
	assert.True(t, domain.ModuleID{}.IsZero())
	assert.Empty(t, domain.ModuleID{}.String())
}

func TestModuleGraph_AddModuleRejectsDuplicates(t *testing.T) {
	t.Parallel()

	g := domain.NewModuleGraph()
	id := domain.NewModuleID("a.js")

	require.NoError(t, g.AddModule(&domain.Module{ID: id}))
	err := g.AddModule(&domain.Module{ID: id})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModuleAlreadyExists))
	assert.Equal(t, 1, g.Len())
}

func TestModuleGraph_AddEdgeCollapsesSameTarget(t *testing.T) {
	t.Parallel()

	g := domain.NewModuleGraph()
	a := domain.NewModuleID("a.js")
	c := domain.NewModuleID("c.js")
	require.NoError(t, g.AddModule(&domain.Module{ID: a}))
	require.NoError(t, g.AddModule(&domain.Module{ID: c}))

	g.AddEdge(a, c, "./c")
	g.AddEdge(a, c, "./c.js")

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, []domain.ModuleID{c}, g.Dependencies(a))
	assert.Equal(t, []domain.ModuleID{a}, g.Dependents(c))
	assert.Equal(t, map[string]domain.ModuleID{"./c": c, "./c.js": c}, g.DependencyMap(a))
	assert.Equal(t, "./c", g.Edges(a)[0].Specifier)
}

func TestValidateEntries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []domain.Entry
		wantErr error
	}{
		{name: "valid", entries: []domain.Entry{{Name: "main"}, {Name: "other-1"}}},
		{name: "empty", entries: nil, wantErr: domain.ErrNoEntries},
		{name: "duplicate", entries: []domain.Entry{{Name: "main"}, {Name: "main"}}, wantErr: domain.ErrDuplicateEntry},
		{name: "invalid name", entries: []domain.Entry{{Name: "a/b"}}, wantErr: domain.ErrInvalidEntryName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := domain.ValidateEntries(tt.entries)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAnalysis_PathTo(t *testing.T) {
	t.Parallel()

	a := domain.NewModuleID("a.js")
	b := domain.NewModuleID("b.js")
	c := domain.NewModuleID("c.js")

	an := domain.NewAnalysis()
	require.True(t, an.RecordDiscovery(a, domain.ModuleID{}, "main"))
	require.True(t, an.RecordDiscovery(b, a, "main"))
	require.True(t, an.RecordDiscovery(c, b, "main"))
	require.False(t, an.RecordDiscovery(c, a, "main"))

	entry, path, ok := an.PathTo(c)
	require.True(t, ok)
	assert.Equal(t, "main", entry)
	assert.Equal(t, []domain.ModuleID{a, b, c}, path)
	assert.Equal(t, 2, an.Discovery[c])

	_, _, ok = an.PathTo(domain.NewModuleID("x.js"))
	assert.False(t, ok)
}

func TestReport_FailedOnlyOnErrors(t *testing.T) {
	t.Parallel()

	var r domain.Report
	r.Add(domain.Diagnostic{Kind: domain.KindCycleWarning}, domain.Diagnostic{Kind: domain.KindUnreachableWarning})
	assert.False(t, r.Failed())

	r.Add(domain.Diagnostic{Kind: domain.KindTransformError, Module: domain.NewModuleID("a.js")})
	assert.True(t, r.Failed())
	assert.Len(t, r.Errors(), 1)
	assert.Len(t, r.Warnings(), 2)

	r.Sort()
	assert.Equal(t, domain.KindTransformError, r.Diagnostics[0].Kind)
}

func TestDiagnostic_ChainIncludesSpecifier(t *testing.T) {
	t.Parallel()

	d := domain.Diagnostic{
		Kind:      domain.KindResolutionError,
		Module:    domain.NewModuleID("src/a.js"),
		Specifier: "./missing",
		Entry:     "main",
		Path:      []domain.ModuleID{domain.NewModuleID("src/a.js")},
		Message:   "module not found",
	}

	assert.Equal(t, `main → src/a.js → "./missing": module not found`, d.String())
}

func TestContentHash_Golden(t *testing.T) {
	t.Parallel()

	// xxhash64 of the empty input; guards against accidental algorithm changes.
	assert.Equal(t, "ef46db3751d8e999", domain.ContentHash(nil))
	assert.Len(t, domain.ContentHash([]byte("x")), domain.HashLen)
	assert.NotEqual(t, domain.Fingerprint("ab", "c"), domain.Fingerprint("a", "bc"))
}

func TestCacheKey_DigestDependsOnEveryField(t *testing.T) {
	t.Parallel()

	base := domain.CacheKey{Module: domain.NewModuleID("a.js"), ContentHash: "1", ConfigHash: "2"}
	other := base
	other.ConfigHash = "3"

	assert.NotEqual(t, base.Digest(), other.Digest())
	assert.Equal(t, base.Digest(), base.Digest())
}
