// Package shell provides a transform that pipes module content through an external command.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Transform = (*Command)(nil)

// stderrTail bounds the amount of stderr attached to a failure.
const stderrTail = 2048

// Command implements ports.Transform by running an external loader command.
// The module content is written to the command's stdin and its stdout becomes
// the transformed content.
type Command struct {
	root   string
	name   string
	args   []string
	env    map[string]string
	logger ports.Logger
}

// NewCommand creates a Command from a loader use. The command runs in root.
func NewCommand(root string, use domain.LoaderUse, logger ports.Logger) *Command {
	env := make(map[string]string)
	if raw, ok := use.Options["env"].(map[string]any); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				env[k] = s
			}
		}
	}

	return &Command{
		root:   root,
		name:   use.Command,
		args:   slices.Clone(use.Args),
		env:    env,
		logger: logger,
	}
}

// Name identifies the command, its arguments and environment for fingerprinting.
func (c *Command) Name() string {
	keys := make([]string, 0, len(c.env))
	for k := range c.env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := append([]string{"exec", c.name}, c.args...)
	for _, k := range keys {
		parts = append(parts, k+"="+c.env[k])
	}
	return strings.Join(parts, " ")
}

// Apply runs the command with content on stdin.
// It merges environments with the following priority (low to high):
// 1. os.Environ()
// 2. PACK_ROOT and PACK_MODULE
// 3. env from the loader options
func (c *Command) Apply(ctx context.Context, content []byte, id domain.ModuleID) ([]byte, error) {
	overrides := map[string]string{
		"PACK_ROOT":   c.root,
		"PACK_MODULE": id.String(),
	}
	for k, v := range c.env {
		overrides[k] = v
	}
	cmdEnv := resolveEnvironment(os.Environ(), overrides)

	executable := c.name
	if !filepath.IsAbs(c.name) {
		if lp, err := lookPath(c.name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, c.args...) //nolint:gosec // user provided loader command
	if len(cmd.Args) > 0 {
		cmd.Args[0] = c.name
	}
	cmd.Dir = c.root
	cmd.Env = cmdEnv
	cmd.Stdin = bytes.NewReader(content)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		return nil, zerr.With(
			zerr.With(zerr.Wrap(err, domain.ErrLoaderCommandFailed.Error()), "exit_code", exitCode),
			"stderr", tail(stderr.String()),
		)
	}

	if stderr.Len() > 0 && c.logger != nil {
		for _, line := range strings.Split(strings.TrimSuffix(stderr.String(), "\n"), "\n") {
			c.logger.Debug(id.String() + ": " + line)
		}
	}

	return stdout.Bytes(), nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		return s[len(s)-stderrTail:]
	}
	return s
}

// resolveEnvironment applies overrides on top of the system environment.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
