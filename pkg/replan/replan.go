// Package replan drives plan revision for stored planning sessions.
//
// A [Planner] ties a planning function to a [session.Manager]: each call
// loads the session's record, replans with the recorded method choices as
// the reference, and persists the new plan only when it ranks at least as
// high as the one already held. A worse plan is reported but never
// overwrites a better one, so a session's plan quality is monotone across
// world-state changes.
package replan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arborhq/arbor/internal/logging"
	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
	"github.com/arborhq/arbor/pkg/session"
)

// PlanFunc produces a plan for the given state. It matches the planning
// engine's Plan method, so an engine (or the facade's Plan) can be passed
// in directly.
type PlanFunc func(ctx context.Context, state domain.State, opts domain.PlanOptions) (*domain.PlanResult, error)

// Outcome reports what a replanning call decided.
type Outcome struct {
	// Record is the session's record after the call: the new one when the
	// plan was accepted, the previously stored one when it was kept.
	Record *ports.PlanRecord

	// Result is the freshly computed plan, present whenever planning
	// succeeded, accepted or not.
	Result *domain.PlanResult

	// Accepted reports whether Result replaced the stored plan.
	Accepted bool
}

// Planner replans stored sessions through a session manager.
type Planner struct {
	sessions *session.Manager
	plan     PlanFunc
	domain   string
	logger   *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithDomainName sets the domain name stamped on records this planner
// creates for fresh sessions.
func WithDomainName(name string) Option {
	return func(p *Planner) { p.domain = name }
}

// WithLogger sets the logger for accept and keep decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// New returns a Planner that plans with fn and persists through sessions.
func New(sessions *session.Manager, fn PlanFunc, opts ...Option) *Planner {
	p := &Planner{
		sessions: sessions,
		plan:     fn,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Replan computes a plan for the session with the given ID against the
// current state. The stored record's MTR is used as the reference, letting
// the engine cull branches that cannot match the incumbent plan; any
// Reference the caller put in opts is replaced. A session with no record
// yet is planned from scratch and its first plan always accepted.
//
// The whole load-plan-store cycle runs under the session's lock. Planning
// failures leave the stored record untouched and are returned as-is, so a
// decomposition failure in a changed world never destroys the plan the
// session still holds.
func (p *Planner) Replan(ctx context.Context, id string, state domain.State, opts domain.PlanOptions) (*Outcome, error) {
	out := &Outcome{}
	rec, err := p.sessions.Update(ctx, id, func(ctx context.Context, old *ports.PlanRecord) (*ports.PlanRecord, error) {
		opts.Reference = nil
		if old != nil {
			opts.Reference = old.MTR
		}

		res, err := p.plan(ctx, state, opts)
		if err != nil {
			return nil, fmt.Errorf("replanning %q: %w", id, err)
		}
		out.Result = res

		if old != nil && domain.ComparePriority(res.MTR, old.MTR) < 0 {
			p.logger.Info("keeping stored plan", "plan_id", id, "steps", len(old.Plan))
			return nil, nil
		}

		next := &ports.PlanRecord{
			ID:     id,
			Domain: p.domain,
			Plan:   res.Plan,
			MTR:    res.MTR,
			State:  res.State,
		}
		if old != nil {
			next.Domain = old.Domain
			next.CreatedAt = old.CreatedAt
		}
		out.Accepted = true
		p.logger.Info("accepted plan", "plan_id", id, "steps", len(res.Plan))
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	out.Record = rec
	return out, nil
}

// Sessions exposes the underlying session manager.
func (p *Planner) Sessions() *session.Manager {
	return p.sessions
}
