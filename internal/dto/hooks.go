package dto

import (
	"encoding/json"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// DecodeHook converts the scalar shorthands into their document structs when
// decoding loosely typed metadata (loam frontmatter arrives as
// map[string]any, so the yaml.Unmarshaler path never runs). It also unwraps
// json.Number into the target numeric type; loam's strict mode hands all
// numbers over that way.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(numberHook, shorthandHook())
}

func numberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Float64, reflect.Float32:
		return n.Float64()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := n.Int64()
		return i, err
	}
	return data, nil
}

func shorthandHook() mapstructure.DecodeHookFuncType {
	conditionType := reflect.TypeOf(ConditionDoc{})
	effectType := reflect.TypeOf(EffectDoc{})

	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		switch to {
		case conditionType:
			switch v := data.(type) {
			case string:
				return ConditionDoc{Callback: v}, nil
			case bool:
				return ConditionDoc{Literal: &v}, nil
			}
		case effectType:
			if v, ok := data.(string); ok {
				return EffectDoc{Transform: v}, nil
			}
		}
		return data, nil
	}
}

// Decode maps loosely typed document data onto out using the shorthand
// hooks.
func Decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: DecodeHook(),
		Result:     out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
