package domain

import (
	"path/filepath"
	"time"
)

const (
	// PackDirName is the name of the internal state directory.
	PackDirName = ".pack"

	// CacheDirName is the name of the build cache directory.
	CacheDirName = "cache"

	// CacheFileName is the name of the file backing the file cache store.
	CacheFileName = "cache.json"

	// CacheDBName is the name of the database backing the sqlite cache store.
	CacheDBName = "cache.db"

	// ConfigBaseName is the base name of the project configuration file.
	ConfigBaseName = "pack"

	// DefaultOutputDir is the default directory chunks are emitted to.
	DefaultOutputDir = "dist"

	// DefaultFilenameTemplate is the default naming template for chunk files.
	DefaultFilenameTemplate = "[name].[contenthash:8].[ext]"

	// DefaultManifestName is the default name of the emitted manifest.
	DefaultManifestName = "manifest.json"

	// DefaultMaxCacheEntries bounds the persisted cache when no limit is configured.
	DefaultMaxCacheEntries = 10000

	// ChunkExt is the extension substituted for the [ext] placeholder.
	ChunkExt = "js"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultWatchDebounce is the default window for coalescing file events.
const DefaultWatchDebounce = 100 * time.Millisecond

// ConfigExtensions lists the recognized config file extensions in lookup order.
var ConfigExtensions = []string{".yaml", ".yml", ".toml"}

// DefaultCachePath returns the default path of the build cache.
// It joins .pack and cache.
func DefaultCachePath() string {
	return filepath.Join(PackDirName, CacheDirName)
}
