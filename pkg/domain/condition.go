package domain

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// CallbackFunc is a named predicate over world state, registered on the
// domain and referenced by conditions via their Callback field.
type CallbackFunc func(State) bool

// Condition is a precondition expression: a tagged variant over an inline
// predicate, a named callback reference, a compiled expression, or a literal
// boolean. Exactly one variant should be set; the zero value is the literal
// false.
//
// Only the Callback, Expr, and Literal variants are serializable. Inline
// predicates are first-class functions and deliberately cannot round-trip
// through the codec; domains intended for persistence should avoid them.
type Condition struct {
	// Predicate is an inline predicate called with the current state.
	Predicate CallbackFunc

	// Callback references a predicate by name in the domain's callback
	// registry. A name missing from the registry evaluates to false.
	Callback string

	// Expr is a boolean expression over state keys, compiled by New.
	// Identifiers resolve to state values; unknown identifiers are allowed
	// and evaluate to nil. A runtime evaluation error yields false.
	Expr string

	// Literal is the constant result used when no other variant is set.
	Literal bool

	// program is the compiled form of Expr, populated by New.
	program *vm.Program
}

// Evaluate resolves the condition against the world state.
func (c Condition) Evaluate(d *Domain, s State) bool {
	switch {
	case c.Predicate != nil:
		return c.Predicate(s)
	case c.Callback != "":
		cb, ok := d.Callback(c.Callback)
		if !ok {
			return false
		}
		return cb(s)
	case c.program != nil:
		out, err := expr.Run(c.program, map[string]any(s))
		if err != nil {
			return false
		}
		b, ok := out.(bool)
		return ok && b
	case c.Expr != "":
		// Expression never compiled: the domain was not assembled via New.
		return false
	default:
		return c.Literal
	}
}

// compile populates the compiled program for Expr conditions. Other variants
// are left untouched.
func (c *Condition) compile() error {
	if c.Expr == "" || c.program != nil {
		return nil
	}
	program, err := expr.Compile(c.Expr,
		expr.Env(map[string]any{}),
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return err
	}
	c.program = program
	return nil
}
