package dto

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// EffectDoc is the serialized form of an effect: either a named transform
// reference or a key merge. A bare string scalar is a transform reference.
type EffectDoc struct {
	Transform string         `yaml:"transform,omitempty" json:"transform,omitempty" mapstructure:"transform"`
	Set       map[string]any `yaml:"set,omitempty" json:"set,omitempty" mapstructure:"set"`
}

type effectFields struct {
	Transform string         `yaml:"transform,omitempty" json:"transform,omitempty"`
	Set       map[string]any `yaml:"set,omitempty" json:"set,omitempty"`
}

func (e *EffectDoc) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!str" {
			*e = EffectDoc{Transform: value.Value}
			return nil
		}
		return fmt.Errorf("line %d: effect scalar must be a transform name, got %s", value.Line, value.Tag)
	case yaml.MappingNode:
		var fields effectFields
		if err := value.Decode(&fields); err != nil {
			return err
		}
		*e = EffectDoc(fields)
		return nil
	}
	return fmt.Errorf("line %d: effect must be a scalar or a mapping", value.Line)
}

func (e EffectDoc) MarshalYAML() (any, error) {
	if e.Transform != "" {
		return e.Transform, nil
	}
	return effectFields{Set: e.Set}, nil
}

func (e *EffectDoc) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		*e = EffectDoc{Transform: v}
		return nil
	case map[string]any:
		var fields effectFields
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		*e = EffectDoc(fields)
		return nil
	}
	return fmt.Errorf("effect must be a string or object, got %T", raw)
}

func (e EffectDoc) MarshalJSON() ([]byte, error) {
	if e.Transform != "" {
		return json.Marshal(e.Transform)
	}
	return json.Marshal(effectFields{Set: e.Set})
}
