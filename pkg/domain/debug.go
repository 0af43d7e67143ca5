package domain

// DebugNode traces the decomposition of one task when the debug flag is set.
// A primitive leaf carries its precondition trace; a compound node carries
// one MethodAttempt per method tried. The trace is output only and never
// consulted by the planner.
type DebugNode struct {
	Task    string `json:"task" yaml:"task"`
	Type    string `json:"type" yaml:"type"`
	Success bool   `json:"success" yaml:"success"`

	// Conditions is the primitive's precondition trace: the results of the
	// conditions actually evaluated, most recent first (evaluation stops at
	// the first failure).
	Conditions []bool `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// Attempts are the compound's method attempts in the order tried.
	Attempts []MethodAttempt `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// MethodAttempt records one method tried while decomposing a compound task.
type MethodAttempt struct {
	Method   string `json:"method" yaml:"method"`
	Priority int    `json:"priority" yaml:"priority"`
	Success  bool   `json:"success" yaml:"success"`

	// Pruned marks an attempt culled by the reference MTR comparison before
	// its subtasks were explored.
	Pruned bool `json:"pruned,omitempty" yaml:"pruned,omitempty"`

	// Conditions is the method's condition trace, most recent first.
	Conditions []bool `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// Subtree holds the decomposition of the method's subtasks. Empty for
	// condition-failed and pruned attempts; partial (up to and including the
	// failing subtask) for attempts that failed deeper.
	Subtree []*DebugNode `json:"subtree,omitempty" yaml:"subtree,omitempty"`
}
