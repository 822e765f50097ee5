package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/config"
	"go.trai.ch/pack/internal/core/domain"
)

func mustYAML(t *testing.T, src string) *config.Tree {
	t.Helper()
	tree, err := config.ParseYAML([]byte(src))
	require.NoError(t, err)
	return tree
}

func TestMerge_KeepsOrderAndOverrides(t *testing.T) {
	t.Parallel()

	base := mustYAML(t, `
b: 1
a:
  x: 1
  y: [1, 2]
c: keep
`)
	overlay := mustYAML(t, `
a:
  y: [3]
  z: new
c: null
d: 4
`)

	merged := config.Merge(base, overlay)

	assert.Equal(t, []string{"b", "a", "d"}, merged.Keys())
	a, ok := merged.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y", "z"}, a.Keys())
	assert.Equal(t, map[string]any{
		"b": 1,
		"a": map[string]any{"x": 1, "y": []any{3}, "z": "new"},
		"d": 4,
	}, merged.Interface())

	_, ok = base.Get("c")
	assert.True(t, ok, "base must not be modified")
}

func TestMerge_LeavesReplaceMappings(t *testing.T) {
	t.Parallel()

	base := mustYAML(t, "a: {x: 1}\nb: 2\n")
	overlay := mustYAML(t, "a: 5\nb: {y: 1}\n")

	merged := config.Merge(base, overlay)
	assert.Equal(t, map[string]any{"a": 5, "b": map[string]any{"y": 1}}, merged.Interface())
}

func TestMerge_LaterOverlayWins(t *testing.T) {
	t.Parallel()

	merged := config.Merge(
		mustYAML(t, "a: 1\n"),
		mustYAML(t, "a: 2\n"),
		mustYAML(t, "a: 3\n"),
	)
	assert.Equal(t, map[string]any{"a": 3}, merged.Interface())
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		tree := mustYAML(t, "")
		assert.Equal(t, config.KindMap, tree.Kind())
		assert.Empty(t, tree.Keys())
	})

	t.Run("aliases are expanded", func(t *testing.T) {
		t.Parallel()
		tree := mustYAML(t, "base: &b {x: 1}\nother: *b\n")
		assert.Equal(t, map[string]any{
			"base":  map[string]any{"x": 1},
			"other": map[string]any{"x": 1},
		}, tree.Interface())
	})

	t.Run("top level must be a mapping", func(t *testing.T) {
		t.Parallel()
		_, err := config.ParseYAML([]byte("- a\n- b\n"))
		require.ErrorIs(t, err, domain.ErrConfigParseFailed)
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()
		_, err := config.ParseYAML([]byte("a: [1, 2\n"))
		require.ErrorContains(t, err, domain.ErrConfigParseFailed.Error())
	})
}

func TestParseTOML_SortsKeys(t *testing.T) {
	t.Parallel()

	tree, err := config.ParseTOML([]byte(`
z = 1
a = "x"

[t]
b = true
a = 2
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "t", "z"}, tree.Keys())
	sub, ok := tree.Get("t")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, sub.Keys())
	assert.Equal(t, int64(1), tree.Interface().(map[string]any)["z"])
}
