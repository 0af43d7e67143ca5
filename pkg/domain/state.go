package domain

// State is the world state a plan is computed against: an arbitrary
// key-value mapping of planning-time knowledge.
//
// State is treated as an immutable value. Code that derives a new state must
// go through Clone (or the With* helpers) rather than mutating a State it
// received; this is what makes backtracking correct, since abandoning a
// decomposition branch is simply discarding its returned values.
type State map[string]any

// NewState creates an empty world state.
func NewState() State {
	return make(State)
}

// Clone returns a deep copy of the state. Nested maps and slices are copied
// recursively; other values are assumed to have value semantics.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = deepCopyValue(v)
	}
	return out
}

// Get returns the value stored under key.
func (s State) Get(key string) (any, bool) {
	v, ok := s[key]
	return v, ok
}

// With returns a copy of the state with key set to value.
func (s State) With(key string, value any) State {
	out := s.Clone()
	out[key] = value
	return out
}

// BackgroundTasks returns the set of background task names recorded in the
// state. It tolerates the map[string]any shape produced by JSON rehydration.
func (s State) BackgroundTasks() map[string]bool {
	out := make(map[string]bool)
	switch set := s[KeyBackgroundTasks].(type) {
	case map[string]bool:
		for name, on := range set {
			if on {
				out[name] = true
			}
		}
	case map[string]any:
		for name, v := range set {
			if on, ok := v.(bool); ok && on {
				out[name] = true
			}
		}
	}
	return out
}

// WithBackgroundTask returns a copy of the state with name added to the
// background task set.
func (s State) WithBackgroundTask(name string) State {
	out := s.Clone()
	set := out.BackgroundTasks()
	set[name] = true
	out[KeyBackgroundTasks] = set
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopyValue(item)
		}
		return out
	case map[string]bool:
		out := make(map[string]bool, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
