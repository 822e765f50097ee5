package app

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

// Watch builds once and rebuilds on every debounced batch of source changes
// until ctx is cancelled. Each pass reuses the previous module graph and the
// build cache of the session. Failed passes are reported and watching goes on.
func (a *App) Watch(ctx context.Context, opts Options) error {
	cfg, err := a.configLoader.Load(opts.dir(), opts.Env)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	stop := a.startProgress(ctx, opts.Progress)
	defer stop()

	p, err := a.open(ctx, cfg, opts.DryRun)
	if err != nil {
		return err
	}
	defer p.close()

	a.watchPass(ctx, p, opts)
	if ctx.Err() != nil {
		return nil
	}

	w, err := a.newWatcher(cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	if err := w.Start(ctx, cfg.Root, cfg.Watch.Ignore); err != nil {
		return err
	}
	defer func() {
		_ = w.Stop()
	}()

	a.logger.Info("watching " + cfg.Root + " for changes")
	for batch := range w.Events() {
		a.logger.Info(fmt.Sprintf("%s, rebuilding", describeBatch(batch)))
		a.watchPass(ctx, p, opts)
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// watchPass runs one pass and writes its reports. Errors are logged.
func (a *App) watchPass(ctx context.Context, p *project, opts Options) {
	stats, err := p.pass(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Error(err)
		}
		return
	}
	if err := a.writeReports(stats, opts); err != nil {
		a.logger.Error(err)
	}
}

func describeBatch(batch []ports.WatchEvent) string {
	if len(batch) == 1 {
		return batch[0].Path + " changed"
	}
	return fmt.Sprintf("%d files changed", len(batch))
}
