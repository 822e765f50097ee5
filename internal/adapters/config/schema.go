package config

import (
	"cmp"
	"path/filepath"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/zerr"
)

// Packfile is the decoded shape of pack.yaml / pack.toml.
type Packfile struct {
	Root        string            `mapstructure:"root"`
	Entries     map[string]string `mapstructure:"entries"`
	Output      OutputDTO         `mapstructure:"output"`
	Resolve     ResolveDTO        `mapstructure:"resolve"`
	Loaders     []LoaderDTO       `mapstructure:"loaders"`
	Splitting   SplittingDTO      `mapstructure:"splitting"`
	Cache       CacheDTO          `mapstructure:"cache"`
	Parallelism int               `mapstructure:"parallelism"`
	Watch       WatchDTO          `mapstructure:"watch"`
}

// OutputDTO is the output section.
type OutputDTO struct {
	Dir          string  `mapstructure:"dir"`
	Filename     string  `mapstructure:"filename"`
	Manifest     *string `mapstructure:"manifest"`
	EmitOnErrors bool    `mapstructure:"emitOnErrors"`
}

// ResolveDTO is the resolve section.
type ResolveDTO struct {
	Extensions []string          `mapstructure:"extensions"`
	Alias      map[string]string `mapstructure:"alias"`
	Modules    []string          `mapstructure:"modules"`
}

// LoaderDTO is one loader rule. A use step is either a loader name or a
// mapping with loader, command, args and options.
type LoaderDTO struct {
	Test string             `mapstructure:"test"`
	Use  []domain.LoaderUse `mapstructure:"use"`
}

// SplittingDTO is the splitting section.
type SplittingDTO struct {
	Enabled    *bool  `mapstructure:"enabled"`
	MinEntries int    `mapstructure:"minEntries"`
	Mode       string `mapstructure:"mode"`
}

// CacheDTO is the cache section.
type CacheDTO struct {
	Backend    string   `mapstructure:"backend"`
	Dir        string   `mapstructure:"dir"`
	MaxEntries int      `mapstructure:"maxEntries"`
	Redis      RedisDTO `mapstructure:"redis"`
}

// RedisDTO configures the redis backend.
type RedisDTO struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// WatchDTO is the watch section.
type WatchDTO struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Ignore   []string      `mapstructure:"ignore"`
}

var loaderUseType = reflect.TypeFor[domain.LoaderUse]()

// stringToLoaderUseHook lets `use: [json]` stand for `use: [{loader: json}]`.
func stringToLoaderUseHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != loaderUseType {
			return data, nil
		}
		name, _ := data.(string)
		return domain.LoaderUse{Loader: name}, nil
	}
}

// decode maps the merged tree onto a Packfile. Unknown keys are rejected.
func decode(tree *Tree) (*Packfile, error) {
	var pf Packfile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToLoaderUseHook(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		ErrorUnused: true,
		Result:      &pf,
	})
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigDecodeFailed.Error())
	}
	if err := dec.Decode(tree.Interface()); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigDecodeFailed.Error())
	}
	return &pf, nil
}

// toConfig applies defaults, resolves paths against configDir and validates.
func (pf *Packfile) toConfig(configDir string) (*domain.Config, error) {
	root, err := resolveRoot(configDir, pf.Root)
	if err != nil {
		return nil, err
	}

	cfg := &domain.Config{
		Root:        root,
		Parallelism: pf.Parallelism,
	}
	if pf.Parallelism < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigDecodeFailed, "parallelism must not be negative"), "parallelism", pf.Parallelism)
	}

	for name, spec := range pf.Entries {
		cfg.Entries = append(cfg.Entries, domain.Entry{Name: name, Specifier: spec})
	}
	if err := domain.ValidateEntries(cfg.Entries); err != nil {
		return nil, err
	}
	domain.SortEntries(cfg.Entries)

	if cfg.Output, err = pf.Output.toConfig(root); err != nil {
		return nil, err
	}

	cfg.Resolve = domain.ResolveConfig{
		Extensions: pf.Resolve.Extensions,
		Alias:      pf.Resolve.Alias,
		Modules:    pf.Resolve.Modules,
	}
	if cfg.Resolve.Extensions == nil {
		cfg.Resolve.Extensions = []string{".js", ".mjs", ".cjs", ".jsx", ".json"}
	}
	if cfg.Resolve.Modules == nil {
		cfg.Resolve.Modules = []string{"node_modules"}
	}

	if cfg.Loaders, err = toLoaderRules(pf.Loaders); err != nil {
		return nil, err
	}
	if cfg.Splitting, err = pf.Splitting.toPolicy(); err != nil {
		return nil, err
	}
	if cfg.Cache, err = pf.Cache.toConfig(root); err != nil {
		return nil, err
	}

	cfg.Watch = domain.WatchConfig{
		Debounce: cmp.Or(pf.Watch.Debounce, domain.DefaultWatchDebounce),
		Ignore:   watchIgnores(pf.Watch.Ignore, root, cfg.Output.Dir),
	}

	return cfg, nil
}

func (o OutputDTO) toConfig(root string) (domain.OutputConfig, error) {
	out := domain.OutputConfig{
		Dir:          resolvePath(root, cmp.Or(o.Dir, domain.DefaultOutputDir)),
		Filename:     cmp.Or(o.Filename, domain.DefaultFilenameTemplate),
		Manifest:     domain.DefaultManifestName,
		EmitOnErrors: o.EmitOnErrors,
	}
	if o.Manifest != nil {
		out.Manifest = *o.Manifest
	}
	if _, err := domain.ParseTemplate(out.Filename); err != nil {
		return domain.OutputConfig{}, err
	}
	return out, nil
}

func toLoaderRules(dtos []LoaderDTO) ([]domain.LoaderRule, error) {
	rules := make([]domain.LoaderRule, 0, len(dtos))
	for i, dto := range dtos {
		if _, err := regexp.Compile(dto.Test); err != nil {
			return nil, zerr.With(zerr.With(zerr.Wrap(err, domain.ErrInvalidLoaderPattern.Error()), "test", dto.Test), "rule", i)
		}
		if len(dto.Use) == 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnknownLoader, "loader rule has no use steps"), "test", dto.Test)
		}
		for _, use := range dto.Use {
			if use.Loader == "" {
				return nil, zerr.With(zerr.Wrap(domain.ErrUnknownLoader, "loader name is empty"), "test", dto.Test)
			}
		}
		rules = append(rules, domain.LoaderRule{Test: dto.Test, Use: dto.Use})
	}
	return rules, nil
}

func (s SplittingDTO) toPolicy() (domain.SplitPolicy, error) {
	p := domain.DefaultSplitPolicy()
	if s.Enabled != nil {
		p.Enabled = *s.Enabled
	}
	if s.MinEntries < 0 {
		return p, zerr.With(zerr.Wrap(domain.ErrConfigDecodeFailed, "minEntries must be positive"), "minEntries", s.MinEntries)
	}
	if s.MinEntries > 0 {
		p.MinEntries = s.MinEntries
	}
	switch mode := domain.SplitMode(s.Mode); mode {
	case "":
	case domain.SplitPerEntrySet, domain.SplitSingle:
		p.Mode = mode
	default:
		return p, zerr.With(zerr.Wrap(domain.ErrInvalidSplitMode, "invalid splitting configuration"), "mode", s.Mode)
	}
	return p, nil
}

var cacheBackends = []string{
	domain.CacheBackendFile,
	domain.CacheBackendSQLite,
	domain.CacheBackendRedis,
	domain.CacheBackendMemory,
	domain.CacheBackendNone,
}

func (c CacheDTO) toConfig(root string) (domain.CacheConfig, error) {
	out := domain.CacheConfig{
		Backend:    cmp.Or(c.Backend, domain.CacheBackendFile),
		Dir:        resolvePath(root, cmp.Or(c.Dir, domain.DefaultCachePath())),
		MaxEntries: cmp.Or(c.MaxEntries, domain.DefaultMaxCacheEntries),
		Redis: domain.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   cmp.Or(c.Redis.Prefix, domain.ConfigBaseName),
		},
	}
	if !slices.Contains(cacheBackends, out.Backend) {
		return domain.CacheConfig{}, zerr.With(zerr.Wrap(domain.ErrUnknownCacheBackend, "invalid cache configuration"), "backend", out.Backend)
	}
	return out, nil
}

// watchIgnores adds the state dir and the top-level output directory to the
// configured ignore globs.
func watchIgnores(configured []string, root, outDir string) []string {
	ignores := configured
	if ignores == nil {
		ignores = []string{"node_modules"}
	}
	ignores = append(slices.Clone(ignores), domain.PackDirName)

	if rel, err := filepath.Rel(root, outDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		ignores = append(ignores, strings.Split(filepath.ToSlash(rel), "/")[0])
	}

	slices.Sort(ignores)
	return slices.Compact(ignores)
}

// resolveRoot determines the project root. A relative root is taken relative
// to the directory of the config file.
func resolveRoot(configDir, configured string) (string, error) {
	root := resolvePath(configDir, configured)
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}
	return abs, nil
}

func resolvePath(base, p string) string {
	if p == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
