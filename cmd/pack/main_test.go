package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/app"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"pack": func() {
			os.Exit(run(context.Background(), os.Args[1:], os.Stderr, provideComponents))
		},
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: filepath.Join("testdata", "script"),
		Setup: func(env *testscript.Env) error {
			env.Setenv("NO_COLOR", "1")
			env.Setenv("CI", "true")
			return nil
		},
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// TestRun_Version verifies that the run function returns 0 when the command succeeds.
func TestRun_Version(t *testing.T) {
	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provideComponents)
	assert.Equal(t, 0, exitCode)
	assert.Empty(t, stderr.String())
}

func TestRun_ProviderError(t *testing.T) {
	provider := func(context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"build"}, stderr, provider)
	assert.Equal(t, 1, exitCode)
	assert.Equal(t, "Error: init failed\n", stderr.String())
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  int
	}{
		{
			name: "success",
			files: map[string]string{
				"pack.yaml": "entries: {main: ./index.js}\n",
				"index.js":  "import \"./dep.js\";\n",
				"dep.js":    "export default 1;\n",
			},
			want: 0,
		},
		{
			name: "module not found",
			files: map[string]string{
				"pack.yaml": "entries: {main: ./index.js}\n",
				"index.js":  "import \"./gone.js\";\n",
			},
			want: 1,
		},
		{
			name:  "missing configuration",
			files: map[string]string{"index.js": ""},
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, filepath.Join(dir, name), content)
			}

			stderr := new(bytes.Buffer)
			exitCode := run(context.Background(), []string{"build", "-C", dir, "--progress", "off"}, stderr, provideComponents)
			assert.Equal(t, tt.want, exitCode, stderr.String())
		})
	}
}
