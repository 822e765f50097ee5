// Package app implements the application layer for pack.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.trai.ch/pack/internal/adapters/cas"
	"go.trai.ch/pack/internal/adapters/detector"
	"go.trai.ch/pack/internal/adapters/fs"
	"go.trai.ch/pack/internal/adapters/linear"
	"go.trai.ch/pack/internal/adapters/telemetry"
	"go.trai.ch/pack/internal/adapters/watcher"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

// WatcherFactory creates the watcher of a watch session.
type WatcherFactory func(window time.Duration) (ports.Watcher, error)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	parser       ports.Parser
	tracer       ports.Tracer
	metrics      ports.Metrics
	newWatcher   WatcherFactory
	stderr       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	parser ports.Parser,
	tracer ports.Tracer,
	metrics ports.Metrics,
	walker *fs.Walker,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		parser:       parser,
		tracer:       tracer,
		metrics:      metrics,
		newWatcher: func(window time.Duration) (ports.Watcher, error) {
			return watcher.New(walker, window, log)
		},
		stderr: os.Stderr,
	}
}

// WithWatcherFactory replaces the file system watcher used by Watch.
func (a *App) WithWatcherFactory(f WatcherFactory) *App {
	a.newWatcher = f
	return a
}

// WithStderr sets the writer progress output goes to.
func (a *App) WithStderr(w io.Writer) *App {
	a.stderr = w
	return a
}

// Options configures a command.
type Options struct {
	// Dir is the directory the configuration lookup starts from.
	Dir string
	// Env selects the configuration overlay.
	Env string
	// Progress is "auto", "on" or "off".
	Progress string
	// StatsFile receives the JSON stats of every pass, if set.
	StatsFile string
	// MetricsFile receives the Prometheus text format metrics, if set.
	MetricsFile string
	// DryRun builds without writing any output file.
	DryRun bool
}

func (o Options) dir() string {
	if o.Dir == "" {
		return "."
	}
	return o.Dir
}

// Build runs a single build pass. It returns ErrBuildFailed when the pass
// recorded resolution or transform errors.
func (a *App) Build(ctx context.Context, opts Options) (*Stats, error) {
	cfg, err := a.configLoader.Load(opts.dir(), opts.Env)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	stop := a.startProgress(ctx, opts.Progress)
	defer stop()

	p, err := a.open(ctx, cfg, opts.DryRun)
	if err != nil {
		return nil, err
	}
	defer p.close()

	stats, err := p.pass(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.writeReports(stats, opts); err != nil {
		return stats, err
	}
	if stats.Failed {
		return stats, zerr.With(zerr.Wrap(domain.ErrBuildFailed, "build finished with errors"), "errors", stats.Errors)
	}
	return stats, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Cache  bool
	Output bool
}

// Clean removes the build cache and the output directory.
func (a *App) Clean(ctx context.Context, opts Options, options CleanOptions) error {
	cfg, err := a.configLoader.Load(opts.dir(), opts.Env)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error

	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if options.Cache {
		switch cfg.Cache.Backend {
		case domain.CacheBackendFile, domain.CacheBackendSQLite:
			remove(cfg.Cache.Dir, "build cache")
		case domain.CacheBackendRedis:
			errs = errors.Join(errs, a.clearStore(ctx, cfg.Cache))
		}
	}

	if options.Output {
		remove(cfg.Output.Dir, "output directory")
	}

	return errs
}

// clearStore empties a cache backend that does not live on disk.
func (a *App) clearStore(ctx context.Context, cfg domain.CacheConfig) error {
	store, err := cas.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	a.logger.Info("clearing " + cfg.Backend + " build cache...")
	if err := store.Save(ctx, domain.CacheSnapshot{}); err != nil {
		return zerr.Wrap(err, "failed to clear build cache")
	}
	a.logger.Info("cleared " + cfg.Backend + " build cache")
	return nil
}

// Config writes the effective merged configuration to w.
func (a *App) Config(_ context.Context, opts Options, w io.Writer) error {
	data, err := a.configLoader.Effective(opts.dir(), opts.Env)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	_, err = w.Write(data)
	return err
}

// startProgress installs the progress renderer selected by flag and returns
// the function that flushes and removes it.
func (a *App) startProgress(ctx context.Context, flag string) func() {
	mode := detector.ResolveMode(detector.DetectEnvironment(), flag)
	if mode != detector.ModeOn {
		return func() {}
	}

	tp := telemetry.Setup(linear.NewRenderer(a.stderr))
	return func() {
		_ = tp.Shutdown(context.WithoutCancel(ctx))
	}
}

func (a *App) writeReports(stats *Stats, opts Options) error {
	var errs error
	if opts.StatsFile != "" {
		errs = errors.Join(errs, stats.WriteFile(opts.StatsFile))
	}
	if opts.MetricsFile != "" {
		if err := a.metrics.WriteFile(opts.MetricsFile); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
