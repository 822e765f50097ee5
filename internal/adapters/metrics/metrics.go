// Package metrics records build measurements in a Prometheus registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Metrics = (*Metrics)(nil)

// Metrics holds the Prometheus collectors of a pack process.
type Metrics struct {
	registry *prometheus.Registry

	modulesTotal      *prometheus.CounterVec
	cacheRequests     *prometheus.CounterVec
	transformDuration prometheus.Histogram
	chunksEmitted     prometheus.Counter
	chunkBytes        prometheus.Histogram
	buildDuration     *prometheus.HistogramVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		modulesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pack_modules_total",
				Help: "Total number of completed module tasks",
			},
			[]string{"phase"},
		),
		cacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pack_cache_requests_total",
				Help: "Total number of build cache lookups",
			},
			[]string{"result"},
		),
		transformDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pack_transform_duration_seconds",
				Help:    "Duration of uncached module transforms in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		chunksEmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pack_chunks_emitted_total",
				Help: "Total number of emitted chunks",
			},
		),
		chunkBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pack_chunk_bytes",
				Help:    "Size of emitted chunks in bytes",
				Buckets: prometheus.ExponentialBuckets(256, 4, 8),
			},
		),
		buildDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pack_build_duration_seconds",
				Help:    "Duration of build passes in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ModuleProcessed counts a completed parse or transform task.
func (m *Metrics) ModuleProcessed(phase string) {
	m.modulesTotal.WithLabelValues(phase).Inc()
}

// CacheRequest counts a build cache lookup.
func (m *Metrics) CacheRequest(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

// TransformObserved records the duration of an uncached transform.
func (m *Metrics) TransformObserved(d time.Duration) {
	m.transformDuration.Observe(d.Seconds())
}

// ChunkEmitted records an emitted chunk.
func (m *Metrics) ChunkEmitted(size int) {
	m.chunksEmitted.Inc()
	m.chunkBytes.Observe(float64(size))
}

// BuildObserved records the duration and outcome of a build pass.
func (m *Metrics) BuildObserved(d time.Duration, failed bool) {
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	m.buildDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// WriteFile writes the registry to path in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMetricsWriteFailed.Error()), "path", path)
	}
	return nil
}
