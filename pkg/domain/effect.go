package domain

// TransformFunc consumes a world state and returns the transformed state.
// Implementations must not mutate the input; derive the result via Clone.
type TransformFunc func(State) State

// Effect is a world-state transform: a tagged variant over an inline
// transform function, a named reference into the domain's transform registry,
// or a literal Set merge. Exactly one variant should be set; the zero value
// is a no-op.
//
// Only the Ref and Set variants are serializable. New rejects Ref values
// missing from the registry, so a built domain never applies a dangling
// reference.
type Effect struct {
	// Transform is an inline transform applied to the state.
	Transform TransformFunc

	// Ref references a transform by name in the domain's transform registry.
	Ref string

	// Set merges the given keys into the state.
	Set map[string]any
}

// Apply resolves the effect against the world state, returning the new state.
func (e Effect) Apply(d *Domain, s State) State {
	switch {
	case e.Transform != nil:
		return e.Transform(s)
	case e.Ref != "":
		fn, ok := d.Transform(e.Ref)
		if !ok {
			return s
		}
		return fn(s)
	case len(e.Set) > 0:
		out := s.Clone()
		for k, v := range e.Set {
			out[k] = deepCopyValue(v)
		}
		return out
	default:
		return s
	}
}
