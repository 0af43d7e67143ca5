package planner

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/arborhq/arbor/pkg/domain"
)

// runState carries the per-call inputs that stay fixed across the recursion.
type runState struct {
	ref      domain.MTR
	debug    bool
	maxDepth int
}

// outcome is what one decomposition level threads upward. On failure only
// node is populated (and only when debug capture is on).
type outcome struct {
	plan  domain.Plan
	state domain.State
	mtr   domain.MTR
	node  *domain.DebugNode
}

// decompose resolves one task into plan steps. Failure means "try the next
// alternative" at the enclosing compound; only the plan entry point turns
// exhaustion into a caller-visible error. Branches communicate exclusively
// through returned values, so abandoning a method is simply discarding its
// outcome.
func (e *Engine) decompose(ctx context.Context, run *runState, name string, st domain.State, plan domain.Plan, mtr domain.MTR, depth int) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}

	task, ok := e.domain.Task(name)
	if !ok {
		node := failedNode(run, name, "")
		return outcome{node: node}, fmt.Errorf("task %q: %w", name, domain.ErrUnknownTask)
	}

	e.fireTaskEnter(ctx, task, depth)

	if task.IsPrimitive() {
		return e.decomposePrimitive(task, st, plan, mtr, run)
	}
	return e.decomposeCompound(ctx, run, task, st, plan, mtr, depth)
}

// decomposePrimitive checks preconditions against the simulated state, emits
// the task's resolved step, and simulates its expected effects. The MTR is
// untouched: only method choices are recorded.
func (e *Engine) decomposePrimitive(task *domain.Task, st domain.State, plan domain.Plan, mtr domain.MTR, run *runState) (outcome, error) {
	ok, trace := evalConditions(e.domain, task.Preconditions, st)
	node := leafNode(run, task, ok, trace)
	if !ok {
		e.logger.Debug("precondition not met", "task", task.Name)
		return outcome{node: node}, fmt.Errorf("task %q: %w", task.Name, domain.ErrPreconditionNotMet)
	}

	unit, _ := e.domain.Workflow(task.Action.Name)
	step := domain.Step{Unit: unit, Params: copyParams(task.Action.Params)}

	return outcome{
		plan:  append(plan, step),
		state: simulateEffects(e.domain, task, st),
		mtr:   mtr,
		node:  node,
	}, nil
}

// decomposeCompound tries the task's methods in priority order. Every method
// sees the state as of entering this task; a failed method's work is
// discarded wholesale before the next one runs.
func (e *Engine) decomposeCompound(ctx context.Context, run *runState, task *domain.Task, st domain.State, plan domain.Plan, mtr domain.MTR, depth int) (outcome, error) {
	if run.maxDepth > 0 && depth >= run.maxDepth {
		e.logger.Debug("depth bound hit", "task", task.Name, "depth", depth)
		node := failedNode(run, task.Name, task.Type)
		return outcome{node: node}, fmt.Errorf("task %q at depth %d: %w", task.Name, depth, domain.ErrDepthExceeded)
	}

	methods := sortedMethods(task.Methods)
	var attempts []domain.MethodAttempt

	for i := range methods {
		m := &methods[i]

		ok, trace := evalConditions(e.domain, m.Conditions, st)
		if !ok {
			e.fireMethodTried(ctx, task.Name, m, domain.OutcomeConditionsFailed)
			if run.debug {
				attempts = append(attempts, domain.MethodAttempt{
					Method:     m.Name,
					Priority:   m.Priority,
					Conditions: trace,
				})
			}
			continue
		}

		candidate := mtr.Record(task.Name, m.Name, m.Priority)

		if len(run.ref) > 0 && cullCandidate(candidate, run.ref) {
			e.fireMethodTried(ctx, task.Name, m, domain.OutcomePruned)
			e.logger.Debug("method pruned by reference record",
				"task", task.Name, "method", m.Name)
			if run.debug {
				attempts = append(attempts, domain.MethodAttempt{
					Method:     m.Name,
					Priority:   m.Priority,
					Pruned:     true,
					Conditions: trace,
				})
			}
			continue
		}

		order, err := domain.ResolveOrder(m.Subtasks, m.Ordering)
		if err != nil {
			// Unreachable for a domain built through New, which dry-runs
			// every method's ordering.
			if run.debug {
				attempts = append(attempts, domain.MethodAttempt{
					Method:     m.Name,
					Priority:   m.Priority,
					Conditions: trace,
				})
			}
			continue
		}

		curPlan, curSt, curMtr := plan, st, candidate
		var subtree []*domain.DebugNode
		failed := false

		for _, sub := range order {
			out, err := e.decompose(ctx, run, sub, curSt, curPlan, curMtr, depth+1)
			if out.node != nil {
				subtree = append(subtree, out.node)
			}
			if err != nil {
				if ctx.Err() != nil {
					return outcome{node: compoundNode(run, task, false, attempts)}, err
				}
				failed = true
				break
			}
			curPlan, curSt, curMtr = out.plan, out.state, out.mtr
		}

		if !failed {
			e.fireMethodTried(ctx, task.Name, m, domain.OutcomeChosen)
			if run.debug {
				attempts = append(attempts, domain.MethodAttempt{
					Method:     m.Name,
					Priority:   m.Priority,
					Success:    true,
					Conditions: trace,
					Subtree:    subtree,
				})
			}
			return outcome{
				plan:  curPlan,
				state: curSt,
				mtr:   curMtr,
				node:  compoundNode(run, task, true, attempts),
			}, nil
		}

		e.fireMethodTried(ctx, task.Name, m, domain.OutcomeSubtasksFailed)
		if run.debug {
			// The partial subtree stays: it shows how far the method got.
			attempts = append(attempts, domain.MethodAttempt{
				Method:     m.Name,
				Priority:   m.Priority,
				Conditions: trace,
				Subtree:    subtree,
			})
		}
	}

	node := compoundNode(run, task, false, attempts)
	return outcome{node: node}, fmt.Errorf("task %q: %w", task.Name, domain.ErrNoMethodFound)
}

// cullCandidate reports whether the reference record outranks the candidate
// branch. Records store choices most recent first, so the root-ward slice of
// the reference covering the candidate's depth is its last len(candidate)
// entries.
func cullCandidate(candidate, ref domain.MTR) bool {
	truncated := ref
	if len(ref) > len(candidate) {
		truncated = ref[len(ref)-len(candidate):]
	}
	return domain.ComparePriority(candidate, truncated) < 0
}

// sortedMethods returns the methods ordered by ascending priority, stable
// among equals. The input is never reordered in place: the domain is shared.
func sortedMethods(methods []domain.Method) []domain.Method {
	out := make([]domain.Method, len(methods))
	copy(out, methods)
	slices.SortStableFunc(out, func(a, b domain.Method) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return out
}

func copyParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

func leafNode(run *runState, task *domain.Task, success bool, trace []bool) *domain.DebugNode {
	if !run.debug {
		return nil
	}
	return &domain.DebugNode{
		Task:       task.Name,
		Type:       task.Type,
		Success:    success,
		Conditions: trace,
	}
}

func compoundNode(run *runState, task *domain.Task, success bool, attempts []domain.MethodAttempt) *domain.DebugNode {
	if !run.debug {
		return nil
	}
	return &domain.DebugNode{
		Task:     task.Name,
		Type:     task.Type,
		Success:  success,
		Attempts: attempts,
	}
}

func failedNode(run *runState, name, taskType string) *domain.DebugNode {
	if !run.debug {
		return nil
	}
	return &domain.DebugNode{Task: name, Type: taskType}
}
