package dto

// DomainDoc is the serialized form of a whole domain: tasks plus the action
// registry and optional state schema. Callback and transform registries are
// runtime registrations and never appear in documents; tasks reference them
// by name.
type DomainDoc struct {
	Name        string            `yaml:"name,omitempty" json:"name,omitempty" mapstructure:"name"`
	StateSchema map[string]string `yaml:"state_schema,omitempty" json:"state_schema,omitempty" mapstructure:"state_schema"`
	Workflows   map[string]string `yaml:"workflows,omitempty" json:"workflows,omitempty" mapstructure:"workflows"`
	Roots       []string          `yaml:"roots,omitempty" json:"roots,omitempty" mapstructure:"roots"`
	Tasks       []TaskDoc         `yaml:"tasks,omitempty" json:"tasks,omitempty" mapstructure:"tasks"`
}

// TaskDoc is one task definition. Type may be omitted when it is implied:
// an action implies primitive, methods imply compound.
type TaskDoc struct {
	Name            string         `yaml:"name" json:"name" mapstructure:"name"`
	Type            string         `yaml:"type,omitempty" json:"type,omitempty" mapstructure:"type"`
	Action          *ActionDoc     `yaml:"action,omitempty" json:"action,omitempty" mapstructure:"action"`
	Preconditions   []ConditionDoc `yaml:"preconditions,omitempty" json:"preconditions,omitempty" mapstructure:"preconditions"`
	Effects         []EffectDoc    `yaml:"effects,omitempty" json:"effects,omitempty" mapstructure:"effects"`
	ExpectedEffects []EffectDoc    `yaml:"expected_effects,omitempty" json:"expected_effects,omitempty" mapstructure:"expected_effects"`
	Cost            float64        `yaml:"cost,omitempty" json:"cost,omitempty" mapstructure:"cost"`
	Duration        float64        `yaml:"duration,omitempty" json:"duration,omitempty" mapstructure:"duration"`
	Background      bool           `yaml:"background,omitempty" json:"background,omitempty" mapstructure:"background"`
	Methods         []MethodDoc    `yaml:"methods,omitempty" json:"methods,omitempty" mapstructure:"methods"`
}

// ActionDoc names an allowed action and the parameters emitted with it.
type ActionDoc struct {
	Name   string         `yaml:"name" json:"name" mapstructure:"name"`
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty" mapstructure:"params"`
}

// MethodDoc is one decomposition method. A nil priority takes the domain
// default at compile time.
type MethodDoc struct {
	Name       string         `yaml:"name,omitempty" json:"name,omitempty" mapstructure:"name"`
	Priority   *int           `yaml:"priority,omitempty" json:"priority,omitempty" mapstructure:"priority"`
	Conditions []ConditionDoc `yaml:"conditions,omitempty" json:"conditions,omitempty" mapstructure:"conditions"`
	Subtasks   []string       `yaml:"subtasks,omitempty" json:"subtasks,omitempty" mapstructure:"subtasks"`
	Ordering   []OrderingDoc  `yaml:"ordering,omitempty" json:"ordering,omitempty" mapstructure:"ordering"`
}

// OrderingDoc constrains one subtask to come before another.
type OrderingDoc struct {
	Before string `yaml:"before" json:"before" mapstructure:"before"`
	After  string `yaml:"after" json:"after" mapstructure:"after"`
}
