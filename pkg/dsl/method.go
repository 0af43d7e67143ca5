package dsl

import "github.com/arborhq/arbor/pkg/domain"

// CompoundBuilder provides a fluent API for configuring a compound task.
type CompoundBuilder struct {
	task    *domain.Task
	builder *Builder
}

// Method adds a decomposition method. An empty name gets the positional
// default ("method1", "method2", ...) at build time; an unset priority
// defaults to domain.DefaultPriority.
func (c *CompoundBuilder) Method(name string) *MethodBuilder {
	c.task.Methods = append(c.task.Methods, domain.Method{
		Name:     name,
		Priority: domain.DefaultPriority,
	})
	return &MethodBuilder{compound: c, idx: len(c.task.Methods) - 1}
}

// MethodBuilder provides a fluent API for configuring one method. It
// addresses its method by index so earlier builders stay valid while later
// methods are added.
type MethodBuilder struct {
	compound *CompoundBuilder
	idx      int
}

func (m *MethodBuilder) cur() *domain.Method {
	return &m.compound.task.Methods[m.idx]
}

// Priority sets the method's priority. Lower numbers are tried first.
func (m *MethodBuilder) Priority(n int) *MethodBuilder {
	m.cur().Priority = n
	return m
}

// When adds a method condition referencing a named callback.
func (m *MethodBuilder) When(callback string) *MethodBuilder {
	m.cur().Conditions = append(m.cur().Conditions, domain.Condition{Callback: callback})
	return m
}

// WhenFunc adds an inline predicate method condition.
func (m *MethodBuilder) WhenFunc(fn domain.CallbackFunc) *MethodBuilder {
	m.cur().Conditions = append(m.cur().Conditions, domain.Condition{Predicate: fn})
	return m
}

// WhenExpr adds a method condition compiled from an expression over state
// keys.
func (m *MethodBuilder) WhenExpr(src string) *MethodBuilder {
	m.cur().Conditions = append(m.cur().Conditions, domain.Condition{Expr: src})
	return m
}

// WhenLiteral adds a constant method condition.
func (m *MethodBuilder) WhenLiteral(v bool) *MethodBuilder {
	m.cur().Conditions = append(m.cur().Conditions, domain.Condition{Literal: v})
	return m
}

// Tasks appends subtasks in declared order.
func (m *MethodBuilder) Tasks(names ...string) *MethodBuilder {
	m.cur().Subtasks = append(m.cur().Subtasks, names...)
	return m
}

// Order constrains one subtask to come before another. Both names must be
// members of the method's subtask list.
func (m *MethodBuilder) Order(before, after string) *MethodBuilder {
	m.cur().Ordering = append(m.cur().Ordering, domain.OrderingPair{Before: before, After: after})
	return m
}
