// Package config loads pack.yaml / pack.toml with environment overlays.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader finds, merges and decodes the project configuration.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds the configuration starting at cwd, merges the overlay for env
// (if non-empty) and returns the validated configuration.
func (l *Loader) Load(cwd, env string) (*domain.Config, error) {
	files, tree, err := l.load(cwd, env)
	if err != nil {
		return nil, err
	}

	pf, err := decode(tree)
	if err != nil {
		return nil, zerr.With(err, "file", files[len(files)-1])
	}

	cfg, err := pf.toConfig(filepath.Dir(files[0]))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid configuration"), "file", files[0])
	}
	cfg.Files = files
	return cfg, nil
}

// Effective returns the merged configuration tree as YAML.
func (l *Loader) Effective(cwd, env string) ([]byte, error) {
	_, tree, err := l.load(cwd, env)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return nil, zerr.Wrap(err, "failed to encode configuration")
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(err, "failed to encode configuration")
	}
	return buf.Bytes(), nil
}

func (l *Loader) load(cwd, env string) ([]string, *Tree, error) {
	base, err := findConfiguration(cwd)
	if err != nil {
		return nil, nil, err
	}
	files := []string{base}

	if env != "" {
		overlay, err := findOverlay(filepath.Dir(base), env)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, overlay)
	}

	trees := make([]*Tree, 0, len(files))
	for _, f := range files {
		l.Logger.Debug("loading configuration from " + f)
		t, err := readTree(f)
		if err != nil {
			return nil, nil, err
		}
		trees = append(trees, t)
	}

	return files, Merge(trees[0], trees[1:]...), nil
}

// findConfiguration walks up from cwd until it finds a pack config file.
func findConfiguration(cwd string) (string, error) {
	dir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	for {
		if path, ok := findFile(dir, domain.ConfigBaseName); ok {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no configuration file in any parent directory"), "cwd", cwd)
		}
		dir = parent
	}
}

// findOverlay locates pack.<env>.* beside the base file.
func findOverlay(dir, env string) (string, error) {
	if strings.ContainsAny(env, `/\`) || env == "." || env == ".." {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "invalid environment name"), "env", env)
	}
	if path, ok := findFile(dir, domain.ConfigBaseName+"."+env); ok {
		return path, nil
	}
	return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "environment overlay not found"), "env", env), "dir", dir)
}

func findFile(dir, stem string) (string, bool) {
	for _, ext := range domain.ConfigExtensions {
		path := filepath.Join(dir, stem+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func readTree(path string) (*Tree, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is discovered from the project tree
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "file", path)
	}

	var t *Tree
	if filepath.Ext(path) == ".toml" {
		t, err = ParseTOML(data)
	} else {
		t, err = ParseYAML(data)
	}
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return t, nil
}
