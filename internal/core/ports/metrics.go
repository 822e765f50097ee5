package ports

import "time"

// Metrics records build measurements.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// ModuleProcessed counts a completed parse or transform task.
	ModuleProcessed(phase string)
	// CacheRequest counts a build cache lookup.
	CacheRequest(hit bool)
	// TransformObserved records the duration of an uncached transform.
	TransformObserved(d time.Duration)
	// ChunkEmitted records an emitted chunk of the given size in bytes.
	ChunkEmitted(size int)
	// BuildObserved records the duration and outcome of a build pass.
	BuildObserved(d time.Duration, failed bool)
	// WriteFile writes the current measurements to path.
	WriteFile(path string) error
}
