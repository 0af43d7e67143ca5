package dsl

import "github.com/arborhq/arbor/pkg/domain"

// PrimitiveBuilder provides a fluent API for configuring a primitive task.
type PrimitiveBuilder struct {
	task    *domain.Task
	builder *Builder
}

// Action sets the task's action: the allowed action name and the parameters
// emitted with the plan step.
func (p *PrimitiveBuilder) Action(name string, params map[string]any) *PrimitiveBuilder {
	p.task.Action = &domain.Action{Name: name, Params: params}
	return p
}

// When adds a precondition referencing a named callback.
func (p *PrimitiveBuilder) When(callback string) *PrimitiveBuilder {
	p.task.Preconditions = append(p.task.Preconditions, domain.Condition{Callback: callback})
	return p
}

// WhenFunc adds an inline predicate precondition.
func (p *PrimitiveBuilder) WhenFunc(fn domain.CallbackFunc) *PrimitiveBuilder {
	p.task.Preconditions = append(p.task.Preconditions, domain.Condition{Predicate: fn})
	return p
}

// WhenExpr adds a precondition compiled from an expression over state keys,
// e.g. "fuel >= 50".
func (p *PrimitiveBuilder) WhenExpr(src string) *PrimitiveBuilder {
	p.task.Preconditions = append(p.task.Preconditions, domain.Condition{Expr: src})
	return p
}

// WhenLiteral adds a constant precondition.
func (p *PrimitiveBuilder) WhenLiteral(v bool) *PrimitiveBuilder {
	p.task.Preconditions = append(p.task.Preconditions, domain.Condition{Literal: v})
	return p
}

// Effect adds a runtime effect referencing a named transform. Runtime
// effects are executor metadata; the planner never applies them.
func (p *PrimitiveBuilder) Effect(transform string) *PrimitiveBuilder {
	p.task.Effects = append(p.task.Effects, domain.Effect{Ref: transform})
	return p
}

// EffectFunc adds an inline runtime effect.
func (p *PrimitiveBuilder) EffectFunc(fn domain.TransformFunc) *PrimitiveBuilder {
	p.task.Effects = append(p.task.Effects, domain.Effect{Transform: fn})
	return p
}

// EffectSet adds a runtime effect that merges the given keys into state.
func (p *PrimitiveBuilder) EffectSet(updates map[string]any) *PrimitiveBuilder {
	p.task.Effects = append(p.task.Effects, domain.Effect{Set: updates})
	return p
}

// Expect adds an expected effect referencing a named transform. Expected
// effects drive the planning-time state simulation.
func (p *PrimitiveBuilder) Expect(transform string) *PrimitiveBuilder {
	p.task.ExpectedEffects = append(p.task.ExpectedEffects, domain.Effect{Ref: transform})
	return p
}

// ExpectFunc adds an inline expected effect.
func (p *PrimitiveBuilder) ExpectFunc(fn domain.TransformFunc) *PrimitiveBuilder {
	p.task.ExpectedEffects = append(p.task.ExpectedEffects, domain.Effect{Transform: fn})
	return p
}

// ExpectSet adds an expected effect that merges the given keys into the
// simulated state.
func (p *PrimitiveBuilder) ExpectSet(updates map[string]any) *PrimitiveBuilder {
	p.task.ExpectedEffects = append(p.task.ExpectedEffects, domain.Effect{Set: updates})
	return p
}

// Cost sets the task's cost metadata. The core planner does not interpret
// it.
func (p *PrimitiveBuilder) Cost(v float64) *PrimitiveBuilder {
	p.task.Cost = v
	return p
}

// Duration sets the task's duration metadata. The core planner does not
// interpret it.
func (p *PrimitiveBuilder) Duration(v float64) *PrimitiveBuilder {
	p.task.Duration = v
	return p
}

// Background marks the task as a persistent fact: successful decomposition
// records its name into the background set of the simulated state.
func (p *PrimitiveBuilder) Background() *PrimitiveBuilder {
	p.task.Background = true
	return p
}
