package app

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.trai.ch/pack/internal/adapters/cas"
	"go.trai.ch/pack/internal/adapters/emit"
	"go.trai.ch/pack/internal/adapters/fs"
	"go.trai.ch/pack/internal/adapters/transform"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/pack/internal/engine/analyzer"
	"go.trai.ch/pack/internal/engine/builder"
	"go.trai.ch/pack/internal/engine/cache"
	"go.trai.ch/pack/internal/engine/namer"
	"go.trai.ch/pack/internal/engine/planner"
	"go.trai.ch/pack/internal/engine/session"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Span names of a build pass.
const (
	SpanBuild   = "build"
	SpanGraph   = "graph"
	SpanAnalyze = "analyze"
	SpanPlan    = "plan"
	SpanRender  = "render"
	SpanEmit    = "emit"
)

// project holds the state shared by the build passes of one configuration.
type project struct {
	app      *App
	cfg      *domain.Config
	cache    *cache.BuildCache
	builder  *builder.Builder
	resolver ports.Resolver
	namer    *namer.Namer
	emitter  ports.Emitter
	previous *domain.ModuleGraph
}

func (a *App) open(ctx context.Context, cfg *domain.Config, dryRun bool) (*project, error) {
	registry, err := transform.NewRegistry(cfg.Root, cfg.Loaders, a.logger)
	if err != nil {
		return nil, zerr.Wrap(err, "invalid loader configuration")
	}

	n, err := namer.New(cfg.Output.Filename)
	if err != nil {
		return nil, err
	}

	store, err := cas.Open(cfg.Cache)
	if err != nil {
		return nil, err
	}
	c := cache.New(store, cfg.Cache.MaxEntries)
	if err := c.Load(ctx); err != nil {
		a.logger.Warn("starting with an empty build cache: " + err.Error())
	}

	var emitter ports.Emitter = emit.NewDir(cfg.Output.Dir)
	if dryRun {
		emitter = emit.NewMemory()
	}

	return &project{
		app:      a,
		cfg:      cfg,
		cache:    c,
		builder:  builder.New(fs.NewReader(cfg.Root), a.parser, registry, a.metrics, cfg.Parallelism),
		resolver: fs.NewResolver(cfg.Root, cfg.Resolve),
		namer:    n,
		emitter:  emitter,
	}, nil
}

func (p *project) close() {
	if err := p.cache.Close(); err != nil {
		p.app.logger.Warn("failed to close build cache: " + err.Error())
	}
}

// pass runs one build over the project. Module level problems are reported in
// the returned stats; the error is reserved for failures of the pass itself.
func (p *project) pass(ctx context.Context) (*Stats, error) {
	start := time.Now()
	log := p.app.logger

	ctx, span := p.app.tracer.Start(ctx, SpanBuild)
	defer span.End()

	p.cache.Begin()
	sess := session.New(p.resolver, p.cache)
	log.Debug("build session " + sess.ID)

	var (
		graph    *domain.ModuleGraph
		diags    []domain.Diagnostic
		analysis *domain.Analysis
		chunks   []domain.Chunk
		report   domain.Report
	)

	err := p.phase(ctx, SpanGraph, func(ctx context.Context) error {
		var err error
		graph, diags, err = p.builder.Build(ctx, sess, p.cfg.Entries, p.previous)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, zerr.Wrap(err, "build pass aborted")
	}

	_ = p.phase(ctx, SpanAnalyze, func(context.Context) error {
		var warnings []domain.Diagnostic
		analysis, warnings = analyzer.Analyze(graph, graph.Entries())
		analyzer.Annotate(analysis, diags)
		report.Add(diags...)
		report.Add(warnings...)
		report.Sort()
		return nil
	})

	_ = p.phase(ctx, SpanPlan, func(context.Context) error {
		chunks = planner.Plan(graph, analysis, p.cfg.Splitting)
		return nil
	})

	err = p.phase(ctx, SpanRender, func(context.Context) error {
		for i := range chunks {
			chunks[i].Content = namer.Render(chunks[i], graph)
		}
		return p.namer.Name(chunks)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	p.logReport(&report)

	emitted := false
	if !report.Failed() || p.cfg.Output.EmitOnErrors {
		if err := p.phase(ctx, SpanEmit, func(ctx context.Context) error {
			return p.emit(ctx, chunks)
		}); err != nil {
			span.RecordError(err)
			return nil, err
		}
		emitted = true
	} else {
		log.Warn("nothing emitted because the build has errors")
	}

	if err := p.cache.Save(ctx); err != nil {
		log.Warn("failed to save build cache: " + err.Error())
	}
	p.previous = graph

	stats := newStats(sess.ID, graph, analysis, &report, chunks, p.cache.Stats())
	stats.Emitted = emitted

	elapsed := time.Since(start)
	p.app.metrics.BuildObserved(elapsed, report.Failed())
	span.SetAttribute("modules", stats.Modules)
	span.SetAttribute("chunks", len(stats.Chunks))

	log.Info(fmt.Sprintf("built %d modules into %d chunks in %s (cache: %d hits, %d misses)",
		stats.Modules, len(stats.Chunks), elapsed.Round(time.Millisecond), stats.Cache.Hits, stats.Cache.Misses))
	return stats, nil
}

func (p *project) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := p.app.tracer.Start(ctx, name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// emit writes every chunk and the manifest in parallel.
func (p *project) emit(ctx context.Context, chunks []domain.Chunk) error {
	limit := p.cfg.Parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	written := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		if written[c.FileName] {
			continue
		}
		written[c.FileName] = true
		g.Go(func() error {
			if err := p.emitter.Emit(ctx, c.FileName, c.Content); err != nil {
				return err
			}
			p.app.metrics.ChunkEmitted(len(c.Content))
			p.app.logger.Debug(fmt.Sprintf("emitted %s (%d bytes)", c.FileName, len(c.Content)))
			return nil
		})
	}

	if p.cfg.Output.Manifest != "" {
		g.Go(func() error {
			data, err := namer.EncodeManifest(namer.NewManifest(chunks))
			if err != nil {
				return err
			}
			return p.emitter.Emit(ctx, p.cfg.Output.Manifest, data)
		})
	}

	return g.Wait()
}

func (p *project) logReport(report *domain.Report) {
	for _, d := range report.Warnings() {
		p.app.logger.Warn(d.String())
	}
	for _, d := range report.Errors() {
		p.app.logger.Error(diagnosticError(d))
	}
}

// diagnosticError turns an error diagnostic into a loggable error carrying
// the chain and the underlying cause.
func diagnosticError(d domain.Diagnostic) error {
	if d.Err == nil {
		return zerr.New(d.String())
	}
	return zerr.Wrap(d.Err, d.Chain())
}
