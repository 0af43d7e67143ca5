package domain

import (
	"reflect"
)

// DiffStates calculates the difference between two world states as a flat
// delta map: added or changed keys carry the new value, deleted keys are
// present with a nil value. Clients merge the delta into their local copy.
//
// If old is nil, the entire new state is the delta. Returns nil when nothing
// changed, so callers can rely on omitempty when serializing.
func DiffStates(old, new State) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new {
			delta[k] = v
		}
		if len(delta) == 0 {
			return nil
		}
		return delta
	}

	for k, newVal := range new {
		oldVal, exists := old[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old {
		if _, exists := new[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}
