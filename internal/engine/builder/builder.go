// Package builder discovers the module graph of a build and transforms every
// module through the build cache.
package builder

import (
	"context"
	"errors"
	"runtime"
	"time"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/pack/internal/engine/session"
	"go.trai.ch/zerr"
)

// Phases reported to ports.Metrics.
const (
	PhaseParse     = "parse"
	PhaseTransform = "transform"
)

// Builder builds module graphs with a bounded set of workers.
type Builder struct {
	reader      ports.SourceReader
	parser      ports.Parser
	selector    ports.TransformSelector
	metrics     ports.Metrics
	parallelism int
}

// New creates a Builder. A parallelism of zero uses one worker per CPU.
func New(
	reader ports.SourceReader,
	parser ports.Parser,
	selector ports.TransformSelector,
	metrics ports.Metrics,
	parallelism int,
) *Builder {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	return &Builder{
		reader:      reader,
		parser:      parser,
		selector:    selector,
		metrics:     metrics,
		parallelism: parallelism,
	}
}

type taskKind uint8

const (
	taskParse taskKind = iota
	taskTransform
)

type task struct {
	kind   taskKind
	module *domain.Module
	chain  ports.Chain
}

type dependency struct {
	spec string
	id   domain.ModuleID
	err  error
}

type result struct {
	task  task
	chain ports.Chain
	deps  []dependency
	hit   bool
	err   error
	// fatal marks a failure returned as the build error.
	fatal bool
}

type runState struct {
	b         *Builder
	ctx       context.Context
	session   *session.Session
	previous  *domain.ModuleGraph
	graph     *domain.ModuleGraph
	roots     map[domain.ModuleID]bool
	queue     []task
	active    int
	resultsCh chan result
	diags     []domain.Diagnostic
	errs      error
}

// Build discovers every module reachable from entries, resolving through the
// session and transforming through its cache.
//
// Module level failures are returned as diagnostics and never stop the
// traversal. The error is non-nil only when ctx is cancelled or an entry
// module cannot be read. When previous holds a module with the same source
// hash its specifiers are reused without parsing.
func (b *Builder) Build(
	ctx context.Context,
	sess *session.Session,
	entries []domain.Entry,
	previous *domain.ModuleGraph,
) (*domain.ModuleGraph, []domain.Diagnostic, error) {
	state := &runState{
		b:         b,
		ctx:       ctx,
		session:   sess,
		previous:  previous,
		graph:     domain.NewModuleGraph(),
		roots:     make(map[domain.ModuleID]bool),
		resultsCh: make(chan result, b.parallelism),
	}

	resolved := state.resolveEntries(entries)
	state.graph.SetEntries(resolved)

	for {
		if ctx.Err() == nil {
			state.schedule()
		}
		if state.active == 0 {
			break
		}
		state.handleResult(<-state.resultsCh)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Join(state.errs, err)
	}
	if state.errs != nil {
		return nil, nil, state.errs
	}
	return state.graph, state.diags, nil
}

// resolveEntries resolves every entry specifier from the project root and
// enqueues the roots. Entries that fail to resolve keep a zero root.
func (state *runState) resolveEntries(entries []domain.Entry) []domain.Entry {
	out := make([]domain.Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		id, err := state.session.Resolve(state.ctx, domain.ModuleID{}, e.Specifier)
		if err != nil {
			state.diags = append(state.diags, domain.Diagnostic{
				Kind:      domain.KindResolutionError,
				Specifier: e.Specifier,
				Entry:     e.Name,
				Message:   message(err),
				Err:       err,
			})
			continue
		}
		out[i].Root = id
		state.roots[id] = true
		state.discover(id)
	}
	return out
}

// discover adds id to the graph and enqueues its parse task once.
func (state *runState) discover(id domain.ModuleID) {
	if _, ok := state.graph.Module(id); ok {
		return
	}
	m := &domain.Module{ID: id}
	_ = state.graph.AddModule(m)
	state.queue = append(state.queue, task{kind: taskParse, module: m})
}

func (state *runState) schedule() {
	for len(state.queue) > 0 && state.active < state.b.parallelism {
		t := state.queue[0]
		state.queue = state.queue[1:]
		state.active++

		go func(t task) {
			state.resultsCh <- state.run(t)
		}(t)
	}
}

func (state *runState) run(t task) result {
	if t.kind == taskParse {
		return state.parse(t)
	}
	return state.transform(t)
}

// parse reads the module, extracts its specifiers and resolves them. It only
// writes to its own module.
func (state *runState) parse(t task) result {
	ctx := state.ctx
	m := t.module

	src, err := state.b.reader.Read(ctx, m.ID)
	if err != nil {
		return result{task: t, err: err, fatal: state.roots[m.ID]}
	}
	m.Source = src
	m.SourceHash = domain.ContentHash(src)

	chain := state.b.selector.Select(m.ID)
	m.Chain = chain.Fingerprint()

	switch {
	case chain.Opaque():
	case state.reusable(m):
		prev, _ := state.previous.Module(m.ID)
		m.Specifiers = prev.Specifiers
	default:
		specs, err := state.b.parser.ExtractSpecifiers(ctx, src)
		if err != nil {
			return result{task: t, chain: chain, err: zerr.Wrap(err, domain.ErrParseFailed.Error())}
		}
		m.Specifiers = specs
	}

	deps := make([]dependency, len(m.Specifiers))
	for i, spec := range m.Specifiers {
		id, err := state.session.Resolve(ctx, m.ID, spec)
		deps[i] = dependency{spec: spec, id: id, err: err}
	}
	return result{task: t, chain: chain, deps: deps}
}

func (state *runState) reusable(m *domain.Module) bool {
	if state.previous == nil {
		return false
	}
	prev, ok := state.previous.Module(m.ID)
	return ok && prev.SourceHash == m.SourceHash && prev.Chain == m.Chain
}

// transform runs the module's chain through the build cache.
func (state *runState) transform(t task) result {
	m := t.module
	key := domain.CacheKey{Module: m.ID, ContentHash: m.SourceHash, ConfigHash: t.chain.Fingerprint()}

	entry, hit, err := state.session.Cache.GetOrCompute(state.ctx, key, func(ctx context.Context) ([]byte, error) {
		start := time.Now()
		out, err := t.chain.Apply(ctx, m.Source, m.ID)
		state.b.metrics.TransformObserved(time.Since(start))
		return out, err
	})
	if err != nil {
		return result{task: t, err: err}
	}

	m.Output = entry.Output
	m.OutputHash = entry.OutputHash
	return result{task: t, hit: hit}
}

func (state *runState) handleResult(res result) {
	state.active--
	m := res.task.module

	if res.task.kind == taskTransform {
		state.b.metrics.ModuleProcessed(PhaseTransform)
		if res.err != nil {
			state.fail(m, res.err)
			return
		}
		state.b.metrics.CacheRequest(res.hit)
		return
	}

	state.b.metrics.ModuleProcessed(PhaseParse)
	if res.err != nil {
		if res.fatal {
			state.errs = errors.Join(state.errs, zerr.With(zerr.Wrap(res.err, "cannot read entry module"), "module", m.ID.String()))
		}
		state.fail(m, res.err)
		return
	}

	for _, dep := range res.deps {
		if dep.err != nil {
			state.diags = append(state.diags, domain.Diagnostic{
				Kind:      domain.KindResolutionError,
				Module:    m.ID,
				Specifier: dep.spec,
				Message:   message(dep.err),
				Err:       dep.err,
			})
			continue
		}
		state.discover(dep.id)
		state.graph.AddEdge(m.ID, dep.id, dep.spec)
	}

	state.queue = append(state.queue, task{kind: taskTransform, module: m, chain: res.chain})
}

// fail marks m as failed and records a transform error.
func (state *runState) fail(m *domain.Module, err error) {
	m.Failed = true
	state.diags = append(state.diags, domain.Diagnostic{
		Kind:    domain.KindTransformError,
		Module:  m.ID,
		Message: message(err),
		Err:     err,
	})
}

// message renders err for a single diagnostic line.
func message(err error) string {
	if errors.Is(err, domain.ErrModuleNotFound) {
		return domain.ErrModuleNotFound.Error()
	}
	return err.Error()
}
