package arbor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arborhq/arbor/internal/logging"
	"github.com/arborhq/arbor/internal/planner"
	"github.com/arborhq/arbor/pkg/adapters/loam"
	"github.com/arborhq/arbor/pkg/adapters/memory"
	"github.com/arborhq/arbor/pkg/adapters/metrics"
	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
)

// Planner is the high-level entry point for the arbor library. It wraps
// the planning engine behind a domain source and provides a simplified
// API for consumers.
//
// A Planner is safe for concurrent use. Reload swaps the compiled domain
// atomically, so in-flight Plan calls finish against the domain they
// started with.
type Planner struct {
	mu     sync.RWMutex
	engine *planner.Engine
	domain *domain.Domain

	source     ports.DomainSource
	callbacks  map[string]domain.CallbackFunc
	transforms map[string]domain.TransformFunc
	hooks      []domain.Hooks
	registerer prometheus.Registerer
	logger     *slog.Logger
	maxDepth   int
}

// Option defines a functional option for configuring the Planner.
type Option func(*Planner)

// WithCallback registers a named condition callback for repository-loaded
// domains. Domains injected with WithDomain carry their own registries and
// are not affected.
func WithCallback(name string, fn domain.CallbackFunc) Option {
	return func(p *Planner) {
		p.callbacks[name] = fn
	}
}

// WithTransform registers a named effect transform for repository-loaded
// domains.
func WithTransform(name string, fn domain.TransformFunc) Option {
	return func(p *Planner) {
		p.transforms[name] = fn
	}
}

// WithHooks registers observability hooks. May be given more than once;
// hook sets fire in registration order.
func WithHooks(hooks domain.Hooks) Option {
	return func(p *Planner) {
		p.hooks = append(p.hooks, hooks)
	}
}

// WithMetrics registers planning collectors on reg and hooks them into the
// engine. Pair it with the HTTP adapter's metrics endpoint or serve reg
// yourself.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Planner) {
		p.registerer = reg
	}
}

// WithLogger sets a custom structured logger for the planner.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithMaxDepth bounds compound descent. Zero means unbounded.
func WithMaxDepth(depth int) Option {
	return func(p *Planner) {
		p.maxDepth = depth
	}
}

// WithSource injects a custom domain source, bypassing the default loam
// repository initialization.
func WithSource(src ports.DomainSource) Option {
	return func(p *Planner) {
		p.source = src
	}
}

// WithDomain plans over an in-code domain. Shorthand for WithSource over
// an in-memory source.
func WithDomain(d *domain.Domain) Option {
	return func(p *Planner) {
		p.source = memory.NewSource(d)
	}
}

// New initializes a Planner. By default it loads the domain from a loam
// repository at the given path, one task definition per document. If a
// source is injected via WithSource or WithDomain, path may be empty.
func New(path string, opts ...Option) (*Planner, error) {
	p := &Planner{
		callbacks:  make(map[string]domain.CallbackFunc),
		transforms: make(map[string]domain.TransformFunc),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}

	if p.registerer != nil {
		collectors, err := metrics.New(p.registerer)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		p.hooks = append(p.hooks, collectors.Hooks())
	}

	if p.source == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no domain source is provided")
		}
		loamOpts := make([]loam.Option, 0, len(p.callbacks)+len(p.transforms))
		for name, fn := range p.callbacks {
			loamOpts = append(loamOpts, loam.WithCallback(name, fn))
		}
		for name, fn := range p.transforms {
			loamOpts = append(loamOpts, loam.WithTransform(name, fn))
		}
		src, err := loam.Open(path, loamOpts...)
		if err != nil {
			return nil, fmt.Errorf("opening domain repository: %w", err)
		}
		p.source = src
	}

	if err := p.Reload(context.Background()); err != nil {
		return nil, err
	}
	return p, nil
}

// NewFromDomain initializes a Planner over an in-code domain.
func NewFromDomain(d *domain.Domain, opts ...Option) (*Planner, error) {
	return New("", append([]Option{WithDomain(d)}, opts...)...)
}

// Reload rebuilds the domain from the source and swaps it in. On failure
// the previous domain stays active.
func (p *Planner) Reload(ctx context.Context) error {
	d, err := p.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading domain: %w", err)
	}

	engOpts := []planner.EngineOption{
		planner.WithLogger(p.logger.With("domain", d.Name())),
	}
	for _, hooks := range p.hooks {
		engOpts = append(engOpts, planner.WithHooks(hooks))
	}
	if p.maxDepth > 0 {
		engOpts = append(engOpts, planner.WithMaxDepth(p.maxDepth))
	}

	p.mu.Lock()
	p.domain = d
	p.engine = planner.NewEngine(d, engOpts...)
	p.mu.Unlock()
	return nil
}

// Plan decomposes the domain's root tasks (or the roots named via
// WithRoots) against the given world state.
func (p *Planner) Plan(ctx context.Context, state domain.State, opts ...domain.PlanOption) (*domain.PlanResult, error) {
	return p.PlanWithOptions(ctx, state, domain.NewPlanOptions(opts...))
}

// PlanWithOptions is Plan with a prebuilt options struct. Its signature
// matches the replanning driver's planning function, so a Planner can be
// handed to it directly.
func (p *Planner) PlanWithOptions(ctx context.Context, state domain.State, opts domain.PlanOptions) (*domain.PlanResult, error) {
	p.mu.RLock()
	eng := p.engine
	p.mu.RUnlock()
	return eng.Plan(ctx, state, opts)
}

// Domain returns the currently loaded domain.
func (p *Planner) Domain() *domain.Domain {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.domain
}

// Inspect returns the domain's tasks, ordered by name, for visualization
// or introspection tools.
func (p *Planner) Inspect() []*domain.Task {
	return p.Domain().Tasks()
}

// Watch returns a channel signaled when the underlying domain definition
// changes. Returns an error if the source does not support watching.
// Consumers call Reload on each signal.
func (p *Planner) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := p.source.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("domain source does not support watching")
}

// Source returns the underlying domain source.
func (p *Planner) Source() ports.DomainSource {
	return p.source
}
