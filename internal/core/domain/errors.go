package domain

import "go.trai.ch/zerr"

var (
	// ErrModuleNotFound is returned when a specifier cannot be mapped to a module.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrModuleAlreadyExists is returned when a module with the same identity is added twice.
	ErrModuleAlreadyExists = zerr.New("module already exists")

	// ErrPathOutsideRoot is returned when a resolved path escapes the project root.
	ErrPathOutsideRoot = zerr.New("path is outside project root")

	// ErrNoEntries is returned when the configuration declares no entry points.
	ErrNoEntries = zerr.New("no entries configured")

	// ErrDuplicateEntry is returned when two entries share a name.
	ErrDuplicateEntry = zerr.New("duplicate entry name")

	// ErrInvalidEntryName is returned when an entry name contains invalid characters.
	ErrInvalidEntryName = zerr.New("entry name can only contain alphanumeric characters, hyphens and underscores")

	// ErrSourceReadFailed is returned when a module's source cannot be read.
	ErrSourceReadFailed = zerr.New("failed to read module source")

	// ErrParseFailed is returned when dependency specifiers cannot be extracted from a module.
	ErrParseFailed = zerr.New("failed to parse module")

	// ErrTransformFailed is returned when a loader chain fails for a module.
	ErrTransformFailed = zerr.New("transform failed")

	// ErrUnknownLoader is returned when a loader rule references a loader that is not registered.
	ErrUnknownLoader = zerr.New("unknown loader")

	// ErrInvalidLoaderPattern is returned when a loader rule's test pattern does not compile.
	ErrInvalidLoaderPattern = zerr.New("invalid loader pattern")

	// ErrLoaderCommandFailed is returned when an external loader command exits unsuccessfully.
	ErrLoaderCommandFailed = zerr.New("loader command failed")

	// ErrInvalidJSONModule is returned when a JSON module does not contain valid JSON.
	ErrInvalidJSONModule = zerr.New("invalid JSON module")

	// ErrInvalidTemplate is returned when an output filename template is malformed.
	ErrInvalidTemplate = zerr.New("invalid filename template")

	// ErrOutputNameCollision is returned when two chunks are assigned the same file name.
	ErrOutputNameCollision = zerr.New("output file name collision")

	// ErrEmitFailed is returned when a chunk cannot be written to its destination.
	ErrEmitFailed = zerr.New("failed to emit chunk")

	// ErrBuildFailed is returned when a build recorded at least one resolution or transform error.
	ErrBuildFailed = zerr.New("build failed")

	// ErrConfigNotFound is returned when no configuration file can be found.
	ErrConfigNotFound = zerr.New("could not find pack.yaml or pack.toml")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigDecodeFailed is returned when the merged configuration cannot be decoded.
	ErrConfigDecodeFailed = zerr.New("failed to decode configuration")

	// ErrInvalidSplitMode is returned when the splitting mode is not recognized.
	ErrInvalidSplitMode = zerr.New("invalid splitting mode, expected 'per-entry-set' or 'single'")

	// ErrUnknownCacheBackend is returned when the cache backend is not recognized.
	ErrUnknownCacheBackend = zerr.New("unknown cache backend, expected 'file', 'sqlite', 'redis', 'memory' or 'none'")

	// ErrCacheLoadFailed is returned when the persisted build cache cannot be loaded.
	ErrCacheLoadFailed = zerr.New("failed to load build cache")

	// ErrCacheSaveFailed is returned when the build cache cannot be persisted.
	ErrCacheSaveFailed = zerr.New("failed to save build cache")

	// ErrStoreCreateFailed is returned when the cache store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create cache store directory")

	// ErrStoreReadFailed is returned when the cache store cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache store")

	// ErrStoreWriteFailed is returned when the cache store cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write cache store")

	// ErrStoreMarshalFailed is returned when cache entries cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal cache entries")

	// ErrStoreUnmarshalFailed is returned when cache entries cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal cache entries")

	// ErrStatsWriteFailed is returned when the stats report cannot be written.
	ErrStatsWriteFailed = zerr.New("failed to write stats report")

	// ErrMetricsWriteFailed is returned when the metrics file cannot be written.
	ErrMetricsWriteFailed = zerr.New("failed to write metrics file")

	// ErrWatcherFailed is returned when the file watcher cannot be started.
	ErrWatcherFailed = zerr.New("failed to start file watcher")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")
)
