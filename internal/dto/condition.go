package dto

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ConditionDoc is the serialized form of a condition. Exactly one field is
// populated. In documents a condition may also appear as a bare scalar: a
// string is a callback reference, a bool a literal.
type ConditionDoc struct {
	Callback string `yaml:"callback,omitempty" json:"callback,omitempty" mapstructure:"callback"`
	Expr     string `yaml:"expr,omitempty" json:"expr,omitempty" mapstructure:"expr"`
	Literal  *bool  `yaml:"literal,omitempty" json:"literal,omitempty" mapstructure:"literal"`
}

// conditionFields breaks the marshaling recursion for the mapping form.
type conditionFields struct {
	Callback string `yaml:"callback,omitempty" json:"callback,omitempty"`
	Expr     string `yaml:"expr,omitempty" json:"expr,omitempty"`
	Literal  *bool  `yaml:"literal,omitempty" json:"literal,omitempty"`
}

func (c *ConditionDoc) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		switch value.Tag {
		case "!!bool":
			var v bool
			if err := value.Decode(&v); err != nil {
				return err
			}
			*c = ConditionDoc{Literal: &v}
			return nil
		case "!!str":
			*c = ConditionDoc{Callback: value.Value}
			return nil
		}
		return fmt.Errorf("line %d: condition scalar must be a callback name or bool, got %s", value.Line, value.Tag)
	case yaml.MappingNode:
		var fields conditionFields
		if err := value.Decode(&fields); err != nil {
			return err
		}
		*c = ConditionDoc(fields)
		return nil
	}
	return fmt.Errorf("line %d: condition must be a scalar or a mapping", value.Line)
}

func (c ConditionDoc) MarshalYAML() (any, error) {
	switch {
	case c.Callback != "":
		return c.Callback, nil
	case c.Expr != "":
		return conditionFields{Expr: c.Expr}, nil
	case c.Literal != nil:
		return *c.Literal, nil
	}
	return false, nil
}

func (c *ConditionDoc) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		*c = ConditionDoc{Callback: v}
		return nil
	case bool:
		*c = ConditionDoc{Literal: &v}
		return nil
	case map[string]any:
		var fields conditionFields
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		*c = ConditionDoc(fields)
		return nil
	}
	return fmt.Errorf("condition must be a string, bool, or object, got %T", raw)
}

func (c ConditionDoc) MarshalJSON() ([]byte, error) {
	switch {
	case c.Callback != "":
		return json.Marshal(c.Callback)
	case c.Expr != "":
		return json.Marshal(conditionFields{Expr: c.Expr})
	case c.Literal != nil:
		return json.Marshal(*c.Literal)
	}
	return json.Marshal(false)
}
