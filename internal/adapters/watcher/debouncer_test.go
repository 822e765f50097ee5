package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/watcher"
	"go.trai.ch/pack/internal/core/ports"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]ports.WatchEvent
}

func (r *recorder) record(batch []ports.WatchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
}

func (r *recorder) snapshot() [][]ports.WatchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]ports.WatchEvent(nil), r.batches...)
}

func write(path string) ports.WatchEvent {
	return ports.WatchEvent{Path: path, Operation: ports.OpWrite}
}

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add(write("/p/src/b.js"))
		d.Add(write("/p/src/a.js"))
		d.Add(ports.WatchEvent{Path: "/p/src/b.js", Operation: ports.OpRemove})

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		batches := rec.snapshot()
		require.Len(t, batches, 1)
		assert.Equal(t, []ports.WatchEvent{
			write("/p/src/a.js"),
			{Path: "/p/src/b.js", Operation: ports.OpRemove},
		}, batches[0])
	})
}

func TestDebouncer_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add(write("/p/a.js"))
		time.Sleep(50 * time.Millisecond)
		d.Add(write("/p/b.js"))
		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, rec.snapshot())

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		require.Len(t, rec.snapshot(), 1)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Flush()
		assert.Empty(t, rec.snapshot(), "empty flush does not deliver")

		d.Add(write("/p/a.js"))
		d.Flush()
		require.Len(t, rec.snapshot(), 1)

		// The stopped timer must not deliver a second batch.
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, rec.snapshot(), 1)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)
		d.Add(write("/p/a.js"))
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}
