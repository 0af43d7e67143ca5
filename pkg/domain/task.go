package domain

// Task type constants define how a task decomposes.
const (
	// TaskPrimitive is a leaf task directly mapped to an executable action.
	TaskPrimitive = "primitive"
	// TaskCompound is a task decomposed via one of several prioritized methods.
	TaskCompound = "compound"
)

// Action identifies the execution unit a primitive task emits, by the name it
// carries in the domain's action registry, together with its parameters.
// The planner never executes actions; it resolves Name against the registry
// and emits the mapped unit identifier in the plan.
type Action struct {
	Name   string         `json:"name" yaml:"name"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Task represents a unit of work in the network.
//
// A primitive task carries an Action plus its preconditions and effects. A
// compound task carries Methods. The remaining fields are ignored for the
// other type.
type Task struct {
	Name string
	Type string // TaskPrimitive or TaskCompound

	// Action is the execution unit emitted when this primitive decomposes.
	Action *Action

	// Preconditions gate the primitive. Evaluated in order, ANDed,
	// short-circuiting on the first failure.
	Preconditions []Condition

	// Effects describe what the action does to the real runtime state.
	// They are metadata for the external executor and are never read during
	// planning.
	Effects []Effect

	// ExpectedEffects simulate the action's outcome on the planning-time
	// state; subsequent preconditions in the same plan see their result.
	ExpectedEffects []Effect

	// Cost and Duration are optional numeric metadata, not interpreted by
	// the planner.
	Cost     float64
	Duration float64

	// Background marks a primitive whose completion is recorded as a
	// persistent fact: successful decomposition inserts the task name into
	// the background task set of the simulated state.
	Background bool

	// Methods are the ordered decomposition recipes of a compound task.
	Methods []Method
}

// IsPrimitive reports whether the task maps directly to an action.
func (t *Task) IsPrimitive() bool {
	return t.Type == TaskPrimitive
}

// IsCompound reports whether the task decomposes through methods.
func (t *Task) IsCompound() bool {
	return t.Type == TaskCompound
}
