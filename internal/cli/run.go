package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/arborhq/arbor"
	"github.com/arborhq/arbor/internal/presentation/debug"
	"github.com/arborhq/arbor/internal/presentation/tui"
	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
	"github.com/arborhq/arbor/pkg/replan"
	"github.com/arborhq/arbor/pkg/session"
)

// PlanOptions carries the plan command's flags.
type PlanOptions struct {
	RepoPath  string
	State     string // raw JSON, or @file
	Roots     []string
	SessionID string
	RedisURL  string
	MaxDepth  int
	Debug     bool
	JSON      bool
	Watch     bool
	Fresh     bool
}

// Execute dispatches the plan command to one-shot or watch mode.
func Execute(opts PlanOptions) error {
	if opts.Watch {
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		return RunWatch(opts)
	}
	return RunPlan(opts)
}

// RunPlan plans once and renders the result.
func RunPlan(opts PlanOptions) error {
	logger := createLogger(opts.Debug)

	if !opts.JSON && isTerminal() {
		tui.PrintBanner()
	}

	state, err := parseState(opts.State)
	if err != nil {
		return err
	}

	r, err := newPlanRunner(opts, logger, nil)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	if err := r.reset(sigCtx); err != nil {
		return err
	}

	res, err := r.plan(sigCtx, state)
	if err != nil {
		if sigCtx.Signal() != nil {
			printSystemMessage("Interrupted.")
			return nil
		}
		return err
	}
	return renderResult(res, opts)
}

// planRunner ties a facade planner to an optional replanning session, so the
// one-shot and watch paths plan the same way.
type planRunner struct {
	planner  *arbor.Planner
	sessions *session.Manager
	driver   *replan.Planner
	opts     PlanOptions
}

// newPlanRunner builds the runner. A non-nil store overrides the configured
// session storage; watch mode passes an in-memory one for generated sessions.
func newPlanRunner(opts PlanOptions, logger *slog.Logger, store ports.PlanStore) (*planRunner, error) {
	planner, err := openPlanner(opts, logger)
	if err != nil {
		return nil, err
	}

	r := &planRunner{planner: planner, opts: opts}
	if opts.SessionID != "" {
		if store == nil {
			if store, err = OpenStore(opts.RepoPath, opts.RedisURL); err != nil {
				return nil, err
			}
		}
		r.sessions = session.New(store, session.WithLogger(logger))
		r.driver = replan.New(r.sessions, planner.PlanWithOptions,
			replan.WithDomainName(planner.Domain().Name()),
			replan.WithLogger(logger),
		)
	}
	return r, nil
}

func openPlanner(opts PlanOptions, logger *slog.Logger) (*arbor.Planner, error) {
	arbOpts := []arbor.Option{arbor.WithLogger(logger)}
	if opts.Debug {
		arbOpts = append(arbOpts, arbor.WithHooks(debugHooks(logger)))
	}
	if opts.MaxDepth > 0 {
		arbOpts = append(arbOpts, arbor.WithMaxDepth(opts.MaxDepth))
	}

	planner, err := arbor.New(opts.RepoPath, arbOpts...)
	if err != nil {
		return nil, fmt.Errorf("opening domain at %q: %w", opts.RepoPath, err)
	}
	return planner, nil
}

// reset discards the stored session record when --fresh is set.
func (r *planRunner) reset(ctx context.Context) error {
	if !r.opts.Fresh || r.sessions == nil {
		return nil
	}
	err := r.sessions.Delete(ctx, r.opts.SessionID)
	if err != nil && !errors.Is(err, domain.ErrPlanNotFound) {
		return fmt.Errorf("resetting session %q: %w", r.opts.SessionID, err)
	}
	if err == nil {
		printSystemMessage("Session '%s' reset.", r.opts.SessionID)
	}
	return nil
}

// plan produces a result, going through the replanning driver when a session
// is configured. A fresh plan that ranks below the session's stored one is
// reported but the stored plan is what gets rendered.
func (r *planRunner) plan(ctx context.Context, state domain.State) (*domain.PlanResult, error) {
	if r.driver == nil {
		return r.planner.PlanWithOptions(ctx, state, planCallOptions(r.opts))
	}

	out, err := r.driver.Replan(ctx, r.opts.SessionID, state, planCallOptions(r.opts))
	if err != nil {
		return nil, err
	}
	if !out.Accepted {
		printSystemMessage("New plan ranks below the stored one; session '%s' keeps its plan.", r.opts.SessionID)
		return &domain.PlanResult{Plan: out.Record.Plan, MTR: out.Record.MTR, State: out.Record.State}, nil
	}
	return out.Result, nil
}

func planCallOptions(opts PlanOptions) domain.PlanOptions {
	var po []domain.PlanOption
	if len(opts.Roots) > 0 {
		po = append(po, domain.WithRoots(opts.Roots...))
	}
	if opts.Debug {
		po = append(po, domain.WithDebugTree())
	}
	return domain.NewPlanOptions(po...)
}

func renderResult(res *domain.PlanResult, opts PlanOptions) error {
	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	markdown := tui.PlanMarkdown(res)
	if isTerminal() {
		render := tui.NewRenderer()
		if out, err := render(markdown); err == nil {
			markdown = out
		}
	}
	fmt.Print(markdown)

	if opts.Debug && len(res.Debug) > 0 {
		fmt.Println()
		fmt.Print(debug.Render(res.Debug))
	}
	return nil
}
