package domain

// OrderingPair declares that Before must precede After in a method's resolved
// execution order. Both names must be members of the method's subtask list;
// New rejects dangling references and cyclic constraint graphs.
type OrderingPair struct {
	Before string `json:"before" yaml:"before"`
	After  string `json:"after" yaml:"after"`
}

// Method is one decomposition recipe of a compound task.
type Method struct {
	// Name identifies the method within its task. New assigns
	// "method<index+1>" (1-based) when empty.
	Name string

	// Priority orders sibling methods: lower values are tried first, declared
	// order breaks ties. Construction surfaces apply DefaultPriority when no
	// priority is declared.
	Priority int

	// Conditions gate the method. Evaluated in order against the state as of
	// entering the compound task, ANDed, short-circuiting on failure.
	Conditions []Condition

	// Subtasks are the task names this method expands into, in declared order.
	Subtasks []string

	// Ordering constrains the execution order of Subtasks. The resolved order
	// satisfies every pair and stays as close to declared order as possible.
	Ordering []OrderingPair
}
