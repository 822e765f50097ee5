package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/metrics"
	"go.trai.ch/pack/internal/core/domain"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.ModuleProcessed("parse")
	m.ModuleProcessed("parse")
	m.ModuleProcessed("transform")
	m.CacheRequest(true)
	m.CacheRequest(false)
	m.CacheRequest(false)
	m.ChunkEmitted(1024)
	m.TransformObserved(5 * time.Millisecond)
	m.BuildObserved(time.Second, false)

	count, err := testutil.GatherAndCount(m.Registry(), "pack_modules_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per phase")

	count, err = testutil.GatherAndCount(m.Registry(), "pack_cache_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(m.Registry(), "pack_chunks_emitted_total", "pack_chunk_bytes", "pack_build_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMetrics_WriteFile(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.CacheRequest(true)

	path := filepath.Join(t.TempDir(), "pack.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pack_cache_requests_total{result="hit"} 1`)
}

func TestMetrics_WriteFileFails(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	err := m.WriteFile(filepath.Join(t.TempDir(), "missing", "dir", "pack.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrMetricsWriteFailed.Error())
}
