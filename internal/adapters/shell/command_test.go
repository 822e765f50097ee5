package shell_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/shell"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestCommand_PipesContent(t *testing.T) {
	t.Parallel()

	cmd := shell.NewCommand(t.TempDir(), domain.LoaderUse{Command: "tr", Args: []string{"a-z", "A-Z"}}, nil)

	out, err := cmd.Apply(context.Background(), []byte("hello"), domain.NewModuleID("a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(out))
}

func TestCommand_ExposesModuleEnvironment(t *testing.T) {
	t.Parallel()

	cmd := shell.NewCommand(t.TempDir(), domain.LoaderUse{
		Command: "sh",
		Args:    []string{"-c", `printf '%s:%s' "$PACK_MODULE" "$GREETING"`},
		Options: map[string]any{"env": map[string]any{"GREETING": "hi"}},
	}, nil)

	out, err := cmd.Apply(context.Background(), nil, domain.NewModuleID("src/a.js"))
	require.NoError(t, err)
	assert.Equal(t, "src/a.js:hi", string(out))
}

func TestCommand_FailureCarriesExitCodeAndStderr(t *testing.T) {
	t.Parallel()

	cmd := shell.NewCommand(t.TempDir(), domain.LoaderUse{
		Command: "sh",
		Args:    []string{"-c", "echo boom >&2; exit 3"},
	}, nil)

	_, err := cmd.Apply(context.Background(), nil, domain.NewModuleID("a.js"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrLoaderCommandFailed.Error())

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	meta := zErr.Metadata()
	assert.Equal(t, 3, meta["exit_code"])
	assert.Equal(t, "boom", meta["stderr"])
}

func TestCommand_NameFingerprintsArgsAndEnv(t *testing.T) {
	t.Parallel()

	a := shell.NewCommand("", domain.LoaderUse{Command: "babel", Args: []string{"--x"}}, nil)
	b := shell.NewCommand("", domain.LoaderUse{Command: "babel", Args: []string{"--y"}}, nil)
	c := shell.NewCommand("", domain.LoaderUse{
		Command: "babel",
		Args:    []string{"--x"},
		Options: map[string]any{"env": map[string]any{"NODE_ENV": "production"}},
	}, nil)

	assert.NotEqual(t, a.Name(), b.Name())
	assert.NotEqual(t, a.Name(), c.Name())
	assert.Equal(t, "exec babel --x NODE_ENV=production", c.Name())
}
