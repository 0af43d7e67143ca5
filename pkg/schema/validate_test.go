package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidate_Success(t *testing.T) {
	schema := Schema{
		"location": String(),
		"fuel":     Int(),
		"speed":    Float(),
		"loaded":   Bool(),
		"stops":    Slice(String()),
	}

	data := map[string]any{
		"location": "depot",
		"fuel":     12,
		"speed":    30.5,
		"loaded":   true,
		"stops":    []string{"dock", "yard"},
	}

	if err := Validate(schema, data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingKey(t *testing.T) {
	schema := Schema{
		"location": String(),
		"fuel":     Int(),
	}

	data := map[string]any{
		"location": "depot",
		// missing fuel
	}

	err := Validate(schema, data)
	if err == nil {
		t.Fatal("Validate() should return error for missing key")
	}

	aggr, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}
	if len(aggr.Errors) != 1 {
		t.Errorf("Validate() = %d errors, want 1", len(aggr.Errors))
	}

	validErr, ok := aggr.Errors[0].(*ValidationError)
	if !ok {
		t.Fatalf("error should be *ValidationError, got %T", aggr.Errors[0])
	}
	if validErr.Key != "fuel" {
		t.Errorf("error Key = %q, want fuel", validErr.Key)
	}
}

func TestValidate_TypeMismatch(t *testing.T) {
	schema := Schema{
		"fuel": Int(),
	}

	err := Validate(schema, map[string]any{"fuel": "full"})
	if err == nil {
		t.Fatal("Validate() should return error for type mismatch")
	}
	if !strings.Contains(err.Error(), "fuel") {
		t.Errorf("error should name the key, got %q", err.Error())
	}
}

func TestValidate_DeterministicOrder(t *testing.T) {
	schema := Schema{
		"zeta":  Int(),
		"alpha": Int(),
		"mid":   Int(),
	}

	err := Validate(schema, map[string]any{})
	aggr, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}

	var keys []string
	for _, e := range aggr.Errors {
		keys = append(keys, e.(*ValidationError).Key)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("error order = %v, want %v", keys, want)
		}
	}
}

func TestValidate_ExtraKeysIgnored(t *testing.T) {
	schema := Schema{"fuel": Int()}

	data := map[string]any{
		"fuel":       12,
		"undeclared": "anything at all",
	}

	if err := Validate(schema, data); err != nil {
		t.Errorf("Validate() error = %v, want nil for undeclared keys", err)
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	if err := Validate(nil, map[string]any{"whatever": 1}); err != nil {
		t.Errorf("Validate(nil schema) error = %v, want nil", err)
	}
	if err := Validate(Schema{}, nil); err != nil {
		t.Errorf("Validate(empty schema) error = %v, want nil", err)
	}
}

func TestValidationErrors_Helper(t *testing.T) {
	err := Validate(Schema{"fuel": Int()}, map[string]any{})
	if got := ValidationErrors(err); len(got) != 1 {
		t.Errorf("ValidationErrors() = %d errors, want 1", len(got))
	}
	if got := ValidationErrors(nil); got != nil {
		t.Errorf("ValidationErrors(nil) = %v, want nil", got)
	}
}

func TestSchema_JSONRoundTrip(t *testing.T) {
	original := Schema{
		"location": String(),
		"fuel":     Int(),
		"stops":    Slice(String()),
		"cargo":    Map(Int()),
	}

	blob, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var restored Schema
	if err := json.Unmarshal(blob, &restored); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if len(restored) != len(original) {
		t.Fatalf("restored %d entries, want %d", len(restored), len(original))
	}
	for key, typ := range original {
		if restored[key].Name() != typ.Name() {
			t.Errorf("key %q: restored type %q, want %q", key, restored[key].Name(), typ.Name())
		}
	}
}

func TestSchema_UnmarshalRejectsUnknownType(t *testing.T) {
	var s Schema
	if err := json.Unmarshal([]byte(`{"fuel": "number"}`), &s); err == nil {
		t.Error("Unmarshal() should reject unsupported type names")
	}
}
