package domain

import "time"

// SplitMode selects how shared modules are grouped.
type SplitMode string

const (
	// SplitPerEntrySet creates one shared chunk per distinct set of entries.
	SplitPerEntrySet SplitMode = "per-entry-set"
	// SplitSingle creates a single shared chunk.
	SplitSingle SplitMode = "single"
)

// Cache backends.
const (
	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

// Config is the effective, validated project configuration.
type Config struct {
	// Root is the absolute project root.
	Root string
	// Files lists the configuration files merged to produce this config.
	Files       []string
	Entries     []Entry
	Output      OutputConfig
	Resolve     ResolveConfig
	Loaders     []LoaderRule
	Splitting   SplitPolicy
	Cache       CacheConfig
	Parallelism int
	Watch       WatchConfig
}

// OutputConfig controls chunk emission.
type OutputConfig struct {
	// Dir is the absolute output directory.
	Dir          string
	Filename     string
	Manifest     string
	EmitOnErrors bool
}

// ResolveConfig controls module resolution.
type ResolveConfig struct {
	Extensions []string
	Alias      map[string]string
	Modules    []string
}

// LoaderRule selects a loader chain for modules whose identity matches Test.
type LoaderRule struct {
	Test string
	Use  []LoaderUse
}

// LoaderUse is one step of a loader chain.
type LoaderUse struct {
	Loader  string
	Command string
	Args    []string
	Options map[string]any
}

// SplitPolicy is the shared-chunk policy of the planner.
type SplitPolicy struct {
	Enabled    bool
	MinEntries int
	Mode       SplitMode
}

// DefaultSplitPolicy returns the policy used when nothing is configured.
func DefaultSplitPolicy() SplitPolicy {
	return SplitPolicy{Enabled: true, MinEntries: 2, Mode: SplitPerEntrySet}
}

// CacheConfig selects and configures the persistent cache backend.
type CacheConfig struct {
	Backend    string
	Dir        string
	MaxEntries int
	Redis      RedisConfig
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration
	Ignore   []string
}
