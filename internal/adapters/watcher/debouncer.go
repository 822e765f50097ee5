package watcher

import (
	"slices"
	"strings"
	"sync"
	"time"
	"unique"

	"go.trai.ch/pack/internal/core/ports"
)

// Debouncer coalesces rapid file system events into batches.
// Within a window the last operation seen for a path wins.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]ports.WatchOp
	timer    *time.Timer
	window   time.Duration
	callback func(batch []ports.WatchEvent)
}

// NewDebouncer creates a new debouncer with the given time window and callback.
func NewDebouncer(window time.Duration, callback func(batch []ports.WatchEvent)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[string]]ports.WatchOp),
		window:   window,
		callback: callback,
	}
}

// Add records an event and restarts the window.
func (d *Debouncer) Add(event ports.WatchEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[unique.Make(event.Path)] = event.Operation

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// takeLocked drains the pending set into a batch sorted by path.
func (d *Debouncer) takeLocked() []ports.WatchEvent {
	batch := make([]ports.WatchEvent, 0, len(d.pending))
	for handle, op := range d.pending {
		batch = append(batch, ports.WatchEvent{Path: handle.Value(), Operation: op})
	}
	slices.SortFunc(batch, func(a, b ports.WatchEvent) int {
		return strings.Compare(a.Path, b.Path)
	})
	d.pending = make(map[unique.Handle[string]]ports.WatchOp)
	return batch
}

// fire is called when the debounce window expires.
func (d *Debouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := d.takeLocked()
	d.mu.Unlock()

	if d.callback != nil {
		go d.callback(batch)
	}
}

// Flush delivers the pending events synchronously.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// Timer already fired, let it complete rather than processing twice.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	batch := d.takeLocked()
	d.mu.Unlock()

	if len(batch) > 0 && d.callback != nil {
		d.callback(batch)
	}
}
