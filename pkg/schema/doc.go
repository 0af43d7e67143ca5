// Package schema provides a type-safe validation system for world state.
//
// It defines a simple type system with built-in types (string, int, float,
// bool, any) and support for slices, string-keyed maps, and custom
// validators. Schemas map state keys to types, enabling validation of a
// world state before planning begins.
//
// Basic usage:
//
//	s := schema.Schema{
//	    "location": schema.String(),
//	    "fuel":     schema.Int(),
//	    "stops":    schema.Slice(schema.String()),
//	}
//
//	state := map[string]any{
//	    "location": "depot",
//	    "fuel":     12,
//	    "stops":    []string{"dock", "yard"},
//	}
//
//	if err := schema.Validate(s, state); err != nil {
//	    // Handle validation errors
//	}
//
// Schemas can be created programmatically or parsed from type strings:
//
//	typeMap := map[string]string{
//	    "location": "string",
//	    "fuel":     "int",
//	    "stops":    "[string]",
//	    "cargo":    "{int}",
//	}
//
//	s, err := schema.ParseTypeMap(typeMap)
//
// Custom validators can be registered for domain-specific validation:
//
//	positiveInt := schema.Custom("positive_int", func(v any) error {
//	    i, ok := v.(int)
//	    if !ok {
//	        return fmt.Errorf("expected int")
//	    }
//	    if i <= 0 {
//	        return fmt.Errorf("must be positive")
//	    }
//	    return nil
//	})
//
// This package is designed to be library-agnostic, with zero external
// dependencies beyond the Go standard library. It can be embedded in larger
// systems or extracted as a standalone library.
package schema
