package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/config"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return config.NewLoader(log)
}

func createFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func TestLoader_Load_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	createFile(t, filepath.Join(dir, "pack.yaml"), "entries:\n  main: ./src/index.js\n")

	cfg, err := newLoader(t).Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, []string{filepath.Join(dir, "pack.yaml")}, cfg.Files)
	assert.Equal(t, []domain.Entry{{Name: "main", Specifier: "./src/index.js"}}, cfg.Entries)
	assert.Equal(t, domain.OutputConfig{
		Dir:      filepath.Join(dir, "dist"),
		Filename: domain.DefaultFilenameTemplate,
		Manifest: domain.DefaultManifestName,
	}, cfg.Output)
	assert.Equal(t, []string{".js", ".mjs", ".cjs", ".jsx", ".json"}, cfg.Resolve.Extensions)
	assert.Equal(t, []string{"node_modules"}, cfg.Resolve.Modules)
	assert.Empty(t, cfg.Loaders)
	assert.Equal(t, domain.DefaultSplitPolicy(), cfg.Splitting)
	assert.Equal(t, domain.CacheConfig{
		Backend:    domain.CacheBackendFile,
		Dir:        filepath.Join(dir, ".pack", "cache"),
		MaxEntries: domain.DefaultMaxCacheEntries,
		Redis:      domain.RedisConfig{Prefix: "pack"},
	}, cfg.Cache)
	assert.Zero(t, cfg.Parallelism)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, []string{".pack", "dist", "node_modules"}, cfg.Watch.Ignore)
}

func TestLoader_Load_WalksUpFromSubdirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	createFile(t, filepath.Join(dir, "pack.yml"), "root: app\nentries: {main: ./index.js}\n")
	cwd := filepath.Join(dir, "app", "src", "deep")
	require.NoError(t, os.MkdirAll(cwd, domain.DirPerm))

	cfg, err := newLoader(t).Load(cwd, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "app"), cfg.Root)
	assert.Equal(t, filepath.Join(dir, "app", "dist"), cfg.Output.Dir)
}

func TestLoader_Load_NotFound(t *testing.T) {
	t.Parallel()

	_, err := newLoader(t).Load(t.TempDir(), "")
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestLoader_Load_EnvironmentOverlay(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	createFile(t, filepath.Join(dir, "pack.yaml"), `
entries:
  main: ./src/main.js
  admin: ./src/admin.js
output:
  dir: build
loaders:
  - test: '\.json$'
    use: [json]
  - test: '\.ts$'
    use: [{loader: exec, command: esbuild, args: [--loader=ts]}]
splitting:
  mode: single
`)
	createFile(t, filepath.Join(dir, "pack.prod.yaml"), `
output:
  emitOnErrors: true
  manifest: ""
loaders:
  - test: '\.txt$'
    use: [text]
splitting: null
`)

	cfg, err := newLoader(t).Load(dir, "prod")
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "pack.yaml"), filepath.Join(dir, "pack.prod.yaml")}, cfg.Files)
	assert.Equal(t, []domain.Entry{
		{Name: "admin", Specifier: "./src/admin.js"},
		{Name: "main", Specifier: "./src/main.js"},
	}, cfg.Entries)
	assert.Equal(t, filepath.Join(dir, "build"), cfg.Output.Dir)
	assert.True(t, cfg.Output.EmitOnErrors)
	assert.Empty(t, cfg.Output.Manifest)
	assert.Equal(t, []domain.LoaderRule{{Test: `\.txt$`, Use: []domain.LoaderUse{{Loader: "text"}}}}, cfg.Loaders)
	assert.Equal(t, domain.DefaultSplitPolicy(), cfg.Splitting)
	assert.Contains(t, cfg.Watch.Ignore, "build")
}

func TestLoader_Load_MissingOverlay(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	createFile(t, filepath.Join(dir, "pack.yaml"), "entries: {main: ./a.js}\n")

	_, err := newLoader(t).Load(dir, "staging")
	require.ErrorIs(t, err, domain.ErrConfigNotFound)

	_, err = newLoader(t).Load(dir, "../etc")
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestLoader_Load_TOML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	createFile(t, filepath.Join(dir, "pack.toml"), `
parallelism = 4

[entries]
main = "./src/index.js"

[[loaders]]
test = '\.json$'
use = ["json"]

[[loaders]]
test = '\.ts$'
use = [{ loader = "exec", command = "esbuild", args = ["--loader=ts"], options = { env = { NODE_ENV = "production" } } }]

[cache]
backend = "sqlite"
maxEntries = 50

[watch]
debounce = "250ms"
ignore = ["tmp"]
`)

	cfg, err := newLoader(t).Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, []domain.LoaderRule{
		{Test: `\.json$`, Use: []domain.LoaderUse{{Loader: "json"}}},
		{Test: `\.ts$`, Use: []domain.LoaderUse{{
			Loader:  "exec",
			Command: "esbuild",
			Args:    []string{"--loader=ts"},
			Options: map[string]any{"env": map[string]any{"NODE_ENV": "production"}},
		}}},
	}, cfg.Loaders)
	assert.Equal(t, domain.CacheBackendSQLite, cfg.Cache.Backend)
	assert.Equal(t, 50, cfg.Cache.MaxEntries)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, []string{".pack", "dist", "tmp"}, cfg.Watch.Ignore)
}

func TestLoader_Load_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantIs  error
		wantMsg string
	}{
		{name: "no entries", content: "output: {dir: out}\n", wantIs: domain.ErrNoEntries},
		{name: "invalid entry name", content: "entries: {a/b: ./a.js}\n", wantIs: domain.ErrInvalidEntryName},
		{name: "unknown key", content: "entries: {main: ./a.js}\nbogus: 1\n", wantMsg: domain.ErrConfigDecodeFailed.Error()},
		{name: "wrong type", content: "entries: [./a.js]\n", wantMsg: domain.ErrConfigDecodeFailed.Error()},
		{name: "bad template", content: "entries: {main: ./a.js}\noutput: {filename: '[hash].js'}\n", wantIs: domain.ErrInvalidTemplate},
		{name: "bad loader pattern", content: "entries: {main: ./a.js}\nloaders: [{test: '(', use: [json]}]\n", wantMsg: domain.ErrInvalidLoaderPattern.Error()},
		{name: "empty use", content: "entries: {main: ./a.js}\nloaders: [{test: 'x', use: []}]\n", wantIs: domain.ErrUnknownLoader},
		{name: "bad backend", content: "entries: {main: ./a.js}\ncache: {backend: s3}\n", wantIs: domain.ErrUnknownCacheBackend},
		{name: "bad split mode", content: "entries: {main: ./a.js}\nsplitting: {mode: each}\n", wantIs: domain.ErrInvalidSplitMode},
		{name: "negative parallelism", content: "entries: {main: ./a.js}\nparallelism: -1\n", wantIs: domain.ErrConfigDecodeFailed},
		{name: "syntax error", content: "entries: {main: ./a.js\n", wantMsg: domain.ErrConfigParseFailed.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			createFile(t, filepath.Join(dir, "pack.yaml"), tt.content)

			_, err := newLoader(t).Load(dir, "")
			require.Error(t, err)
			if tt.wantIs != nil {
				require.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				require.ErrorContains(t, err, tt.wantMsg)
			}
		})
	}
}

func TestLoader_Effective(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	createFile(t, filepath.Join(dir, "pack.yaml"), `
entries:
  main: ./src/main.js
output:
  dir: dist
  emitOnErrors: false
parallelism: 2
`)
	createFile(t, filepath.Join(dir, "pack.ci.toml"), `
parallelism = 1

[output]
emitOnErrors = true
`)

	out, err := newLoader(t).Effective(dir, "ci")
	require.NoError(t, err)

	assert.Equal(t, `entries:
  main: ./src/main.js
output:
  dir: dist
  emitOnErrors: true
parallelism: 1
`, string(out))
}
