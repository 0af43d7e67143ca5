package loam

// ManifestID is the reserved document ID for domain-level settings. The
// manifest carries the domain name, the action registry, the state schema,
// and the default roots; every other document defines one task.
const ManifestID = "domain"

// TaskMetadata is the frontmatter of a repository document. Polymorphic
// fields (conditions, effects, methods) stay raw here and are decoded with
// the document shorthand hooks afterwards; loam's own frontmatter decoding
// knows nothing about them.
type TaskMetadata struct {
	// ID overrides the filename-derived task name.
	ID   string `json:"id,omitempty" mapstructure:"id"`
	Type string `json:"type,omitempty" mapstructure:"type"`

	Action          map[string]any `json:"action,omitempty" mapstructure:"action"`
	Preconditions   []any          `json:"preconditions,omitempty" mapstructure:"preconditions"`
	Effects         []any          `json:"effects,omitempty" mapstructure:"effects"`
	ExpectedEffects []any          `json:"expected_effects,omitempty" mapstructure:"expected_effects"`
	Cost            any            `json:"cost,omitempty" mapstructure:"cost"`
	Duration        any            `json:"duration,omitempty" mapstructure:"duration"`
	Background      bool           `json:"background,omitempty" mapstructure:"background"`
	Methods         []any          `json:"methods,omitempty" mapstructure:"methods"`

	// Manifest fields, honored only on the ManifestID document.
	Name        string            `json:"name,omitempty" mapstructure:"name"`
	Workflows   map[string]string `json:"workflows,omitempty" mapstructure:"workflows"`
	StateSchema map[string]any    `json:"state_schema,omitempty" mapstructure:"state_schema"`
	Roots       []string          `json:"roots,omitempty" mapstructure:"roots"`
}

// definesTask reports whether any task-shaped field is set. The manifest
// document must not define one.
func (m TaskMetadata) definesTask() bool {
	return m.Type != "" || m.Action != nil || len(m.Methods) > 0 ||
		len(m.Preconditions) > 0 || len(m.Effects) > 0 || len(m.ExpectedEffects) > 0
}
