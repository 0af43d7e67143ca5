package domain

// Choice is one decomposition decision: the method selected for a compound
// task, with the priority it was selected at.
type Choice struct {
	Task     string `json:"task" yaml:"task"`
	Method   string `json:"method" yaml:"method"`
	Priority int    `json:"priority" yaml:"priority"`
}

// MTR is the Method Traversal Record: the ordered history of method choices
// made while building a plan. Choices are stored most recent first; Reversed
// yields root-to-leaf reading order.
//
// An MTR is an immutable value: Record returns a new MTR and never touches
// the receiver, so every decomposition branch carries its own copy.
type MTR []Choice

// NewMTR returns an empty traversal record.
func NewMTR() MTR {
	return MTR{}
}

// Record returns a new MTR with the choice added at the front.
func (m MTR) Record(task, method string, priority int) MTR {
	out := make(MTR, 0, len(m)+1)
	out = append(out, Choice{Task: task, Method: method, Priority: priority})
	return append(out, m...)
}

// Reversed returns a copy of the record in root-to-leaf order.
func (m MTR) Reversed() MTR {
	out := make(MTR, len(m))
	for i, c := range m {
		out[len(m)-1-i] = c
	}
	return out
}

// ComparePriority compares two traversal records as plan qualities. It
// returns +1 when a outranks b, -1 when b outranks a, and 0 when they are
// equal.
//
// Both records are read root to leaf and compared pairwise: when one record
// is exhausted, the longer, fully-specified one outranks the shorter prefix.
// At each position, the same task decided by a lower priority number
// outranks; equal priorities recurse. A branch mismatch (different tasks at
// the same position) is decided by priority number first, then by lexical
// order of the task names, the smaller name outranking.
func ComparePriority(a, b MTR) int {
	return comparePath(a.Reversed(), b.Reversed())
}

func comparePath(a, b MTR) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return -1
	case len(b) == 0:
		return 1
	}

	ca, cb := a[0], b[0]
	if ca.Priority != cb.Priority {
		if ca.Priority < cb.Priority {
			return 1
		}
		return -1
	}
	if ca.Task == cb.Task {
		return comparePath(a[1:], b[1:])
	}
	if ca.Task < cb.Task {
		return 1
	}
	return -1
}
