// Package planner implements recursive hierarchical task decomposition over
// a compiled domain. The engine walks compound tasks depth-first, trying
// methods in priority order and backtracking on failure, while simulating
// primitive effects forward through a value-copied world state.
package planner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/schema"
)

// Engine decomposes tasks against a single read-only domain. It holds no
// per-call state, so one engine is safe to share across concurrent Plan
// calls.
type Engine struct {
	domain   *domain.Domain
	schema   schema.Schema
	logger   *slog.Logger
	hooks    []domain.Hooks
	maxDepth int
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks registers observability hooks. May be given more than once;
// hook sets fire in registration order.
func WithHooks(hooks domain.Hooks) EngineOption {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks)
	}
}

// WithMaxDepth bounds compound descent. Crossing the bound is a recoverable
// decomposition failure, so shallower alternatives are still tried. Zero
// means unbounded.
func WithMaxDepth(depth int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// NewEngine creates a planning engine over the given domain.
func NewEngine(d *domain.Domain, opts ...EngineOption) *Engine {
	e := &Engine{
		domain: d,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	// Declarations were validated when the domain was built, so the parse
	// cannot fail here.
	if decls := d.StateSchema(); len(decls) > 0 {
		if s, err := schema.ParseTypeMap(decls); err == nil {
			e.schema = s
		}
	}

	return e
}

// Plan decomposes the requested root tasks against the initial state and
// returns the resulting plan, traversal record, and simulated end state.
//
// Roots defaults to the domain's declared default roots, then to ["root"].
// With multiple roots, each root is planned in turn against the state and
// traversal record the previous root produced, and its plan segment is
// placed ahead of the accumulated plan: for roots [r1, r2], r2's steps come
// first in the result.
//
// Validation failures (unknown or non-compound explicit roots, schema
// violations) are returned as plain sentinel errors. Exhausted decomposition
// is returned as a *domain.DecompositionError. Context cancellation aborts
// the walk and returns the context's error.
func (e *Engine) Plan(ctx context.Context, state domain.State, opts domain.PlanOptions) (*domain.PlanResult, error) {
	start := time.Now()

	roots := opts.Roots
	if len(roots) > 0 {
		for _, root := range roots {
			if root == "" {
				return nil, fmt.Errorf("empty root task name: %w", domain.ErrBadRootTasks)
			}
			task, ok := e.domain.Task(root)
			if !ok {
				return nil, fmt.Errorf("root task %q: %w", root, domain.ErrRootNotFound)
			}
			if !task.IsCompound() {
				return nil, fmt.Errorf("root task %q: %w", root, domain.ErrRootNotCompound)
			}
		}
	} else if roots = e.domain.DefaultRoots(); len(roots) == 0 {
		// Declared default roots were validated by New. The fallback root is
		// not pre-validated: a domain without a task named "root" surfaces
		// the unknown-task decomposition failure.
		roots = []string{domain.DefaultRootTask}
	}

	if e.schema != nil {
		if err := schema.Validate(e.schema, state); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStateInvalid, err)
		}
	}

	run := &runState{
		ref:      opts.Reference,
		debug:    opts.Debug,
		maxDepth: e.maxDepth,
	}
	if opts.MaxDepth > 0 {
		run.maxDepth = opts.MaxDepth
	}

	e.logger.Debug("planning started",
		"domain", e.domain.Name(),
		"roots", roots,
		"reference", len(run.ref) > 0,
	)

	st := state.Clone()
	mtr := domain.NewMTR()
	var final domain.Plan
	var debug []*domain.DebugNode

	for _, root := range roots {
		out, err := e.decompose(ctx, run, root, st, domain.Plan{}, mtr, 0)
		if out.node != nil {
			debug = append(debug, out.node)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.firePlanDone(ctx, roots, false, 0, time.Since(start))
			e.logger.Debug("planning failed", "root", root, "err", err)
			return nil, &domain.DecompositionError{Task: root, Err: err, Trace: out.node}
		}

		// This root's segment lands ahead of everything planned so far.
		segment := make(domain.Plan, len(out.plan))
		copy(segment, out.plan)
		final = append(segment, final...)
		st = out.state
		mtr = out.mtr
	}

	e.firePlanDone(ctx, roots, true, len(final), time.Since(start))
	e.logger.Debug("planning finished",
		"roots", roots,
		"steps", len(final),
		"duration", time.Since(start),
	)

	return &domain.PlanResult{
		Plan:  final,
		MTR:   mtr,
		State: st,
		Debug: debug,
	}, nil
}

func (e *Engine) fireTaskEnter(ctx context.Context, task *domain.Task, depth int) {
	if len(e.hooks) == 0 {
		return
	}
	ev := &domain.TaskEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTaskEnter},
		Task:      task.Name,
		TaskType:  task.Type,
		Depth:     depth,
	}
	for _, h := range e.hooks {
		if h.OnTaskEnter != nil {
			h.OnTaskEnter(ctx, ev)
		}
	}
}

func (e *Engine) fireMethodTried(ctx context.Context, task string, m *domain.Method, outcome string) {
	if len(e.hooks) == 0 {
		return
	}
	ev := &domain.MethodEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventMethodTried},
		Task:      task,
		Method:    m.Name,
		Priority:  m.Priority,
		Outcome:   outcome,
	}
	for _, h := range e.hooks {
		if h.OnMethodTried != nil {
			h.OnMethodTried(ctx, ev)
		}
	}
}

func (e *Engine) firePlanDone(ctx context.Context, roots []string, success bool, steps int, elapsed time.Duration) {
	if len(e.hooks) == 0 {
		return
	}
	ev := &domain.PlanEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPlanDone},
		Roots:     roots,
		Success:   success,
		Steps:     steps,
		Duration:  elapsed,
	}
	for _, h := range e.hooks {
		if h.OnPlanDone != nil {
			h.OnPlanDone(ctx, ev)
		}
	}
}
