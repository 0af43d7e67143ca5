// Package dto defines the serialized document forms of a planning domain.
// The same structs back the YAML codec, the JSON API surface, and the
// mapstructure decoding of loam frontmatter; only named references and
// literals exist here, never inline functions.
package dto
