// Package watcher reports debounced source changes of a project tree.
package watcher

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/pack/internal/adapters/fs"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// DefaultDebounceWindow is used when no window is configured.
const DefaultDebounceWindow = domain.DefaultWatchDebounce

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	walker    *fs.Walker
	debouncer *Debouncer
	logger    ports.Logger

	root   string
	ignore []string

	batches  chan []ports.WatchEvent
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher whose batches are debounced over window.
func New(walker *fs.Walker, window time.Duration, logger ports.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatcherFailed.Error())
	}
	if window <= 0 {
		window = DefaultDebounceWindow
	}

	w := &Watcher{
		fsWatcher: fsw,
		walker:    walker,
		logger:    logger,
		batches:   make(chan []ports.WatchEvent),
		done:      make(chan struct{}),
	}
	w.debouncer = NewDebouncer(window, w.deliver)
	return w, nil
}

// Start begins watching root recursively.
func (w *Watcher) Start(ctx context.Context, root string, ignore []string) error {
	w.root = root
	w.ignore = ignore

	for dir := range w.walker.WalkDirs(root, ignore) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrWatcherFailed.Error()), "dir", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

// Events yields debounced batches until the watcher stops.
func (w *Watcher) Events() iter.Seq[[]ports.WatchEvent] {
	return func(yield func([]ports.WatchEvent) bool) {
		for {
			select {
			case batch := <-w.batches:
				if !yield(batch) {
					return
				}
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) deliver(batch []ports.WatchEvent) {
	select {
	case w.batches <- batch:
	case <-w.done:
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("watcher: " + err.Error())
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}

	op, ok := convertOp(event.Op)
	if !ok {
		return
	}

	if op == ports.OpCreate {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			for dir := range w.walker.WalkDirs(event.Name, w.ignore) {
				_ = w.fsWatcher.Add(dir)
			}
		}
	}

	w.debouncer.Add(ports.WatchEvent{Path: event.Name, Operation: op})
}

// ignored reports whether any path element below the root is ignored.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == ".git" || part == ".jj" {
			return true
		}
		if slices.ContainsFunc(w.ignore, func(pattern string) bool {
			matched, _ := filepath.Match(pattern, part)
			return matched
		}) {
			return true
		}
	}
	return false
}

func convertOp(op fsnotify.Op) (ports.WatchOp, bool) {
	switch {
	case op.Has(fsnotify.Write):
		return ports.OpWrite, true
	case op.Has(fsnotify.Create):
		return ports.OpCreate, true
	case op.Has(fsnotify.Remove):
		return ports.OpRemove, true
	case op.Has(fsnotify.Rename):
		return ports.OpRename, true
	default:
		return 0, false
	}
}
