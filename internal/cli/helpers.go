// Package cli implements the plumbing behind the arbor commands: signal
// handling, logger construction, state parsing, session storage, and plan
// rendering.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/term"

	"github.com/arborhq/arbor/internal/logging"
	"github.com/arborhq/arbor/pkg/domain"
)

// SignalContext is a context cancelled by SIGINT or SIGTERM that remembers
// which signal fired, so completion messages can tell an interrupt from a
// normal exit.
type SignalContext struct {
	context.Context
	stop context.CancelFunc

	mu  sync.Mutex
	sig os.Signal
}

// NewSignalContext wraps parent with OS signal cancellation. Callers must
// call Cancel to release the signal watcher.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, stop: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.mu.Lock()
			sc.sig = sig
			sc.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return sc
}

// Cancel cancels the context and stops signal delivery.
func (s *SignalContext) Cancel() {
	s.stop()
}

// Signal returns the signal that cancelled the context, nil when the
// context ended for another reason.
func (s *SignalContext) Signal() os.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sig
}

func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage writes meta output (watcher status, session notices)
// distinct from rendered plan content.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> "+format+"\n", args...)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// parseState turns the --state flag into a world state. An empty flag means
// an empty state, a value starting with @ names a JSON file, anything else
// is parsed as an inline JSON object.
func parseState(raw string) (domain.State, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.State{}, nil
	}

	data := []byte(raw)
	if strings.HasPrefix(raw, "@") {
		var err error
		data, err = os.ReadFile(strings.TrimPrefix(raw, "@"))
		if err != nil {
			return nil, fmt.Errorf("reading state file: %w", err)
		}
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing state JSON: %w", err)
	}
	return state, nil
}

// debugHooks routes planner events to the logger at debug level.
func debugHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnTaskEnter: func(_ context.Context, ev *domain.TaskEvent) {
			logger.Debug("task enter", "task", ev.Task, "type", ev.TaskType, "depth", ev.Depth)
		},
		OnMethodTried: func(_ context.Context, ev *domain.MethodEvent) {
			logger.Debug("method tried", "task", ev.Task, "method", ev.Method, "priority", ev.Priority, "outcome", ev.Outcome)
		},
		OnPlanDone: func(_ context.Context, ev *domain.PlanEvent) {
			logger.Debug("plan done", "roots", ev.Roots, "success", ev.Success, "steps", ev.Steps, "duration", ev.Duration)
		},
	}
}
