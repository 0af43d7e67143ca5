package schema

import "sort"

// Schema is a map of state keys to their expected types.
// Example: {"location": String(), "fuel": Int(), "stops": Slice(String())}
type Schema map[string]Type

// Validate checks if data conforms to the schema. Every declared key must be
// present and well-typed. Keys are checked in sorted order so the aggregate
// error is deterministic. Returns an error with all failures found.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	keys := make([]string, 0, len(schema))
	for key := range schema {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		value, exists := data[key]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		if err := schema[key].Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}
