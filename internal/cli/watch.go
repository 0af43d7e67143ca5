package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arborhq/arbor/internal/presentation/tui"
	"github.com/arborhq/arbor/pkg/adapters/memory"
	"github.com/arborhq/arbor/pkg/ports"
)

// RunWatch plans, then replans every time the domain repository changes.
// Watch runs always go through a replanning session, so an edit only
// replaces the current plan when the new decomposition ranks at least as
// high. When no session is named, a run-scoped in-memory one is used.
func RunWatch(opts PlanOptions) error {
	logger := createLogger(opts.Debug)
	tui.PrintBanner()

	var store ports.PlanStore
	if opts.SessionID == "" {
		opts.SessionID = "watch-" + uuid.NewString()[:8]
		store = memory.NewStore()
	}

	state, err := parseState(opts.State)
	if err != nil {
		return err
	}

	r, err := newPlanRunner(opts, logger, store)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	events, err := r.planner.Watch(sigCtx)
	if err != nil {
		return fmt.Errorf("watching %q: %w", opts.RepoPath, err)
	}

	if err := r.reset(sigCtx); err != nil {
		return err
	}

	logger.Info("watcher started", "path", opts.RepoPath, "session_id", opts.SessionID)
	printSystemMessage("Watching '%s' with session '%s'.", opts.RepoPath, opts.SessionID)

	for {
		if res, err := r.plan(sigCtx, state); err != nil {
			if sigCtx.Signal() != nil {
				printSystemMessage("Interrupted.")
				return nil
			}
			printSystemMessage("Planning failed: %v", err)
		} else if err := renderResult(res, opts); err != nil {
			return err
		}

		printSystemMessage("Waiting for changes...")
		select {
		case <-sigCtx.Done():
			if sig := sigCtx.Signal(); sig != nil {
				printSystemMessage("Watcher stopped (%v).", sig)
			}
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			printSystemMessage("Change detected.")
			// Let the filesystem settle before reloading.
			time.Sleep(100 * time.Millisecond)
			if err := r.planner.Reload(sigCtx); err != nil {
				printSystemMessage("Reload failed, keeping previous domain: %v", err)
			}
		}
	}
}
