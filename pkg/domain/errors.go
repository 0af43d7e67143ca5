package domain

import (
	"errors"
	"fmt"
)

// Domain construction errors. New fails closed on these; the domain must not
// be used.
var (
	// ErrInvalidOrdering is returned when a method's ordering pair references
	// a task outside its subtask list.
	ErrInvalidOrdering = errors.New("invalid ordering constraint")

	// ErrCyclicOrdering is returned when a method's ordering constraints form
	// a cycle.
	ErrCyclicOrdering = errors.New("cyclic ordering dependency")

	// ErrUnknownAction is returned when a primitive's action name is missing
	// from the action registry.
	ErrUnknownAction = errors.New("action not in registry")

	// ErrUnknownTransform is returned when an effect references a transform
	// missing from the transform registry.
	ErrUnknownTransform = errors.New("transform not in registry")

	// ErrBadExpression is returned when a condition expression fails to
	// compile.
	ErrBadExpression = errors.New("invalid condition expression")

	// ErrDuplicateTask is returned when two tasks share a name.
	ErrDuplicateTask = errors.New("duplicate task")

	// ErrBadSchema is returned when a state schema declaration uses an
	// unsupported type name.
	ErrBadSchema = errors.New("invalid state schema")
)

// Root and state errors. Returned from plan entry for caller mistakes and
// from New for bad default-root declarations; they never drive backtracking
// and are not retried.
var (
	// ErrBadRootTasks is returned for malformed root task lists.
	ErrBadRootTasks = errors.New("invalid root tasks")

	// ErrRootNotFound is returned when an explicitly named root task does not
	// exist in the domain.
	ErrRootNotFound = errors.New("root task not found")

	// ErrRootNotCompound is returned when an explicitly named root task is
	// not a compound task.
	ErrRootNotCompound = errors.New("root task is not compound")

	// ErrStateInvalid is returned when the initial world state violates the
	// domain's state schema.
	ErrStateInvalid = errors.New("world state invalid")
)

// Decomposition failures. These drive backtracking: at any single level they
// mean "try the next method", and only total exhaustion surfaces to the
// caller, wrapped in a DecompositionError.
var (
	// ErrUnknownTask is returned when a task name is not in the domain.
	ErrUnknownTask = errors.New("unknown task")

	// ErrPreconditionNotMet is returned when a primitive's preconditions fail.
	ErrPreconditionNotMet = errors.New("precondition not met")

	// ErrNoMethodFound is returned when every method of a compound task was
	// rejected, pruned, or failed.
	ErrNoMethodFound = errors.New("no valid method found")

	// ErrDepthExceeded is returned when a compound descent crosses the
	// configured depth bound.
	ErrDepthExceeded = errors.New("decomposition depth exceeded")
)

// Persistence and serialization errors.
var (
	// ErrPlanNotFound is returned when a plan record ID cannot be found in
	// the store.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrNotSerializable is returned when a domain holds inline functions
	// that cannot round-trip through the codec.
	ErrNotSerializable = errors.New("domain not serializable")
)

// DecompositionError is the failure surfaced when planning a root exhausts
// every alternative. Err carries the innermost reason (one of the
// decomposition sentinels); Trace carries the debug tree when it was
// requested.
type DecompositionError struct {
	Task  string
	Err   error
	Trace *DebugNode
}

func (e *DecompositionError) Error() string {
	return fmt.Sprintf("planning %q: %v", e.Task, e.Err)
}

func (e *DecompositionError) Unwrap() error {
	return e.Err
}
