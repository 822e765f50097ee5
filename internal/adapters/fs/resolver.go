package fs

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Resolver = (*Resolver)(nil)

// Resolver implements node-style module resolution inside a project root.
type Resolver struct {
	root       string
	extensions []string
	modules    []string
	aliases    []alias
}

type alias struct {
	key    string
	target string
}

// NewResolver creates a new Resolver for the project rooted at root.
func NewResolver(root string, cfg domain.ResolveConfig) *Resolver {
	aliases := make([]alias, 0, len(cfg.Alias))
	for k, v := range cfg.Alias {
		aliases = append(aliases, alias{key: k, target: v})
	}
	// Longest key first so "@app/ui" wins over "@app".
	slices.SortFunc(aliases, func(a, b alias) int {
		if len(a.key) != len(b.key) {
			return len(b.key) - len(a.key)
		}
		return strings.Compare(a.key, b.key)
	})

	modules := cfg.Modules
	if len(modules) == 0 {
		modules = []string{"node_modules"}
	}

	return &Resolver{
		root:       root,
		extensions: cfg.Extensions,
		modules:    modules,
		aliases:    aliases,
	}
}

// Resolve maps spec, as written in from, to a module identity.
func (r *Resolver) Resolve(ctx context.Context, from domain.ModuleID, spec string) (domain.ModuleID, error) {
	if err := ctx.Err(); err != nil {
		return domain.ModuleID{}, err
	}

	dir := "."
	if !from.IsZero() {
		dir = from.Dir()
	}

	spec, aliased := r.applyAlias(spec)
	if aliased {
		// Alias targets are relative to the project root.
		dir = "."
	}

	for _, candidate := range r.candidates(dir, spec) {
		if found, ok := r.tryPath(candidate); ok {
			if id, ok := r.toModuleID(found); ok {
				return id, nil
			}
		}
	}

	return domain.ModuleID{}, zerr.With(
		zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "cannot resolve specifier"), "specifier", spec),
		"from", from.String(),
	)
}

func (r *Resolver) applyAlias(spec string) (string, bool) {
	for _, a := range r.aliases {
		if spec == a.key {
			return relativeSpec(a.target), true
		}
		if strings.HasPrefix(spec, a.key+"/") {
			return relativeSpec(a.target) + strings.TrimPrefix(spec, a.key), true
		}
	}
	return spec, false
}

func relativeSpec(target string) string {
	if isRelative(target) || strings.HasPrefix(target, "/") {
		return target
	}
	return "./" + target
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// candidates returns the absolute paths to probe, in priority order.
func (r *Resolver) candidates(dir, spec string) []string {
	switch {
	case isRelative(spec):
		return []string{r.abs(path.Join(dir, spec))}
	case strings.HasPrefix(spec, "/"):
		return []string{r.abs(path.Clean(spec))}
	}

	// Bare specifier: walk up node_modules directories towards the root.
	var out []string
	for cur := dir; ; cur = path.Dir(cur) {
		for _, m := range r.modules {
			out = append(out, r.abs(path.Join(cur, m, spec)))
		}
		if cur == "." || cur == "/" {
			break
		}
	}
	return out
}

func (r *Resolver) abs(rel string) string {
	return filepath.Join(r.root, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
}

func (r *Resolver) tryPath(p string) (string, bool) {
	if found, ok := r.tryFile(p); ok {
		return found, true
	}
	if isDir(p) {
		return r.tryDir(p)
	}
	return "", false
}

func (r *Resolver) tryFile(p string) (string, bool) {
	if isFile(p) {
		return p, true
	}
	for _, ext := range r.extensions {
		if isFile(p + ext) {
			return p + ext, true
		}
	}
	return "", false
}

func (r *Resolver) tryDir(dir string) (string, bool) {
	if main := packageMain(dir); main != "" {
		target := filepath.Join(dir, filepath.FromSlash(main))
		if found, ok := r.tryFile(target); ok {
			return found, true
		}
		if isDir(target) {
			if found, ok := r.tryIndex(target); ok {
				return found, true
			}
		}
	}
	return r.tryIndex(dir)
}

func (r *Resolver) tryIndex(dir string) (string, bool) {
	for _, ext := range r.extensions {
		p := filepath.Join(dir, "index"+ext)
		if isFile(p) {
			return p, true
		}
	}
	return "", false
}

func (r *Resolver) toModuleID(abs string) (domain.ModuleID, bool) {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return domain.ModuleID{}, false
	}
	return domain.NewModuleID(filepath.ToSlash(rel)), true
}

func packageMain(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json")) //nolint:gosec // Path is inside the project root
	if err != nil {
		return ""
	}
	var pkg struct {
		Main string `json:"main"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return pkg.Main
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}
