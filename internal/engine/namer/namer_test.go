package namer_test

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/engine/namer"
)

func id(s string) domain.ModuleID {
	return domain.NewModuleID(s)
}

func fixtureGraph(t *testing.T) *domain.ModuleGraph {
	t.Helper()

	g := domain.NewModuleGraph()
	modules := []*domain.Module{
		{ID: id("src/a.js"), Output: []byte("const b = require(\"./b\");\nconsole.log(b);")},
		{ID: id("src/b.js"), Output: []byte("module.exports = 1;\n")},
		{ID: id("src/shared.js"), Output: []byte("module.exports = \"</script>\";\n")},
		{ID: id("src/bad.json"), Failed: true},
	}
	for _, m := range modules {
		require.NoError(t, g.AddModule(m))
	}
	g.AddEdge(id("src/a.js"), id("src/shared.js"), "./shared")
	g.AddEdge(id("src/a.js"), id("src/b.js"), "./b")
	return g
}

// body strips the prelude every chunk starts with.
func body(t *testing.T, out []byte) []byte {
	t.Helper()
	require.True(t, bytes.HasPrefix(out, []byte(namer.Prelude)))
	return bytes.TrimPrefix(out, []byte(namer.Prelude))
}

func TestRender(t *testing.T) {
	t.Parallel()

	g := fixtureGraph(t)

	tests := []struct {
		name  string
		chunk domain.Chunk
	}{
		{
			name: "render_entry",
			chunk: domain.Chunk{
				Name:    "main",
				Kind:    domain.ChunkEntry,
				Entry:   "main",
				Root:    id("src/a.js"),
				Modules: []domain.ModuleID{id("src/b.js"), id("src/a.js")},
				Imports: []string{"shared~main~other"},
			},
		},
		{
			name: "render_shared",
			chunk: domain.Chunk{
				Name:    "shared~main~other",
				Kind:    domain.ChunkShared,
				Modules: []domain.ModuleID{id("src/shared.js"), id("src/bad.json")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gold := goldie.New(t)
			gold.Assert(t, tt.name, body(t, namer.Render(tt.chunk, g)))
		})
	}
}

func TestRender_DependsOnlyOnModules(t *testing.T) {
	t.Parallel()

	g := fixtureGraph(t)
	modules := []domain.ModuleID{id("src/shared.js")}

	a := namer.Render(domain.Chunk{Name: "shared~a~b", Kind: domain.ChunkShared, Modules: modules}, g)
	b := namer.Render(domain.Chunk{Name: "shared", Kind: domain.ChunkShared, Modules: modules}, g)
	assert.Equal(t, a, b)
}

func TestNamer_Name(t *testing.T) {
	t.Parallel()

	n, err := namer.New(domain.DefaultFilenameTemplate)
	require.NoError(t, err)

	content := []byte("console.log(1);\n")
	chunks := []domain.Chunk{{Name: "main", Content: content}}
	require.NoError(t, n.Name(chunks))

	hash := domain.ContentHash(content)
	assert.Equal(t, hash, chunks[0].Hash)
	assert.Equal(t, "main."+hash[:8]+".js", chunks[0].FileName)
}

func TestNamer_HashSensitivity(t *testing.T) {
	t.Parallel()

	n, err := namer.New("[name].[contenthash].[ext]")
	require.NoError(t, err)

	render := func(output string) []domain.Chunk {
		g := domain.NewModuleGraph()
		require.NoError(t, g.AddModule(&domain.Module{ID: id("a.js"), Output: []byte(output)}))
		require.NoError(t, g.AddModule(&domain.Module{ID: id("b.js"), Output: []byte("b")}))
		chunks := []domain.Chunk{
			{Name: "a", Kind: domain.ChunkEntry, Root: id("a.js"), Modules: []domain.ModuleID{id("a.js")}},
			{Name: "b", Kind: domain.ChunkEntry, Root: id("b.js"), Modules: []domain.ModuleID{id("b.js")}},
		}
		for i := range chunks {
			chunks[i].Content = namer.Render(chunks[i], g)
		}
		require.NoError(t, n.Name(chunks))
		return chunks
	}

	before := render("x = 1;")
	after := render("x = 2;")

	assert.NotEqual(t, before[0].FileName, after[0].FileName)
	assert.Equal(t, before[1].FileName, after[1].FileName)
}

func TestNamer_Collision(t *testing.T) {
	t.Parallel()

	n, err := namer.New("bundle.[ext]")
	require.NoError(t, err)

	err = n.Name([]domain.Chunk{{Name: "a", Content: []byte("a")}, {Name: "b", Content: []byte("b")}})
	require.ErrorIs(t, err, domain.ErrOutputNameCollision)
}

func TestNamer_IdenticalChunksShareAFile(t *testing.T) {
	t.Parallel()

	n, err := namer.New("[contenthash].[ext]")
	require.NoError(t, err)

	chunks := []domain.Chunk{{Name: "alt", Content: []byte("same")}, {Name: "main", Content: []byte("same")}}
	require.NoError(t, n.Name(chunks))
	assert.Equal(t, chunks[0].FileName, chunks[1].FileName)
}

func TestNew_InvalidTemplate(t *testing.T) {
	t.Parallel()

	_, err := namer.New("[name].[hash].js")
	require.ErrorIs(t, err, domain.ErrInvalidTemplate)
}

func TestManifest(t *testing.T) {
	t.Parallel()

	chunks := []domain.Chunk{
		{
			Name: "shared~main~other", Kind: domain.ChunkShared,
			Modules: []domain.ModuleID{id("src/c.js")},
			Content: []byte("xx"), Hash: "1111", FileName: "shared~main~other.1111.js",
		},
		{
			Name: "main", Kind: domain.ChunkEntry, Entry: "main", Root: id("src/a.js"),
			Modules: []domain.ModuleID{id("src/a.js")}, Imports: []string{"shared~main~other"},
			Content: []byte("abc"), Hash: "2222", FileName: "main.2222.js",
		},
		{
			Name: "other", Kind: domain.ChunkEntry, Entry: "other", Root: id("src/b.js"),
			Modules: []domain.ModuleID{id("src/b.js")}, Imports: []string{"shared~main~other"},
			Hash: "3333", FileName: "other.3333.js",
		},
	}

	m := namer.NewManifest(chunks)
	assert.Equal(t, []string{"shared~main~other.1111.js", "main.2222.js"}, m.Entries["main"])

	data, err := namer.EncodeManifest(m)
	require.NoError(t, err)

	gold := goldie.New(t)
	gold.Assert(t, "manifest", data)
}
