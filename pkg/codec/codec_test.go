package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhq/arbor/pkg/codec"
	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/dsl"
)

const deliveryYAML = `
name: delivery
state_schema:
  fuel: int
workflows:
  load: workflow.load.v1
  fly: workflow.fly.v1
  drive: workflow.drive.v1
roots: [deliver]
tasks:
  - name: deliver
    methods:
      - name: by_air
        priority: 10
        conditions:
          - expr: fuel >= 50
        subtasks: [load, fly]
        ordering:
          - before: load
            after: fly
      - name: by_road
        subtasks: [load, drive]
  - name: load
    action:
      name: load
      params:
        bay: 3
    preconditions:
      - dock_clear
    expected_effects:
      - set:
          cargo: loaded
  - name: fly
    action:
      name: fly
    effects:
      - burn_fuel
    cost: 9.5
    duration: 2
  - name: drive
    action:
      name: drive
    background: true
`

func registrations() []codec.Option {
	return []codec.Option{
		codec.WithCallback("dock_clear", func(domain.State) bool { return true }),
		codec.WithTransform("burn_fuel", func(s domain.State) domain.State {
			return s.With("fuel", 0)
		}),
	}
}

func TestUnmarshal_BuildsDomain(t *testing.T) {
	d, err := codec.Unmarshal([]byte(deliveryYAML), registrations()...)
	require.NoError(t, err)

	assert.Equal(t, "delivery", d.Name())
	assert.Equal(t, []string{"deliver", "drive", "fly", "load"}, d.TaskNames())
	assert.Equal(t, []string{"deliver"}, d.DefaultRoots())
	assert.Equal(t, map[string]string{"fuel": "int"}, d.StateSchema())

	unit, ok := d.Workflow("fly")
	require.True(t, ok)
	assert.Equal(t, "workflow.fly.v1", unit)

	deliver, ok := d.Task("deliver")
	require.True(t, ok)
	require.True(t, deliver.IsCompound())
	require.Len(t, deliver.Methods, 2)
	assert.Equal(t, 10, deliver.Methods[0].Priority)
	assert.Equal(t, domain.DefaultPriority, deliver.Methods[1].Priority)
	assert.Equal(t, []string{"load", "fly"}, deliver.Methods[0].Subtasks)
	assert.Equal(t, "fuel >= 50", deliver.Methods[0].Conditions[0].Expr)

	load, ok := d.Task("load")
	require.True(t, ok)
	require.True(t, load.IsPrimitive())
	assert.Equal(t, "dock_clear", load.Preconditions[0].Callback)
	assert.Equal(t, map[string]any{"cargo": "loaded"}, load.ExpectedEffects[0].Set)
	assert.Equal(t, 3, load.Action.Params["bay"])

	fly, ok := d.Task("fly")
	require.True(t, ok)
	assert.Equal(t, "burn_fuel", fly.Effects[0].Ref)
	assert.Equal(t, 9.5, fly.Cost)
	assert.Equal(t, 2.0, fly.Duration)

	drive, ok := d.Task("drive")
	require.True(t, ok)
	assert.True(t, drive.Background)
}

func TestUnmarshal_CompiledConditionsEvaluate(t *testing.T) {
	d, err := codec.Unmarshal([]byte(deliveryYAML), registrations()...)
	require.NoError(t, err)

	deliver, _ := d.Task("deliver")
	air := deliver.Methods[0].Conditions[0]
	assert.True(t, air.Evaluate(d, domain.State{"fuel": 80}))
	assert.False(t, air.Evaluate(d, domain.State{"fuel": 10}))
	assert.False(t, air.Evaluate(d, domain.State{}))
}

func TestUnmarshal_UnknownFieldRejected(t *testing.T) {
	_, err := codec.Unmarshal([]byte("name: x\nbogus: 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing domain document")
}

func TestUnmarshal_MalformedYAML(t *testing.T) {
	_, err := codec.Unmarshal([]byte("tasks: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing domain document")
}

func TestUnmarshal_DanglingTransformRejected(t *testing.T) {
	// burn_fuel is referenced but not registered.
	_, err := codec.Unmarshal([]byte(deliveryYAML),
		codec.WithCallback("dock_clear", func(domain.State) bool { return true }))
	require.ErrorIs(t, err, domain.ErrUnknownTransform)
}

func TestUnmarshal_DanglingCallbackTolerated(t *testing.T) {
	// Missing callbacks evaluate to false at planning time instead of
	// failing the build; the document stays loadable without its runtime.
	d, err := codec.Unmarshal([]byte(deliveryYAML),
		codec.WithTransform("burn_fuel", func(s domain.State) domain.State { return s }))
	require.NoError(t, err)

	load, _ := d.Task("load")
	assert.False(t, load.Preconditions[0].Evaluate(d, domain.State{}))
}

func TestMarshal_RoundTrip(t *testing.T) {
	b := dsl.New("delivery").
		Allow("load", "workflow.load.v1").
		Allow("fly", "workflow.fly.v1").
		Schema("fuel", "int").
		Roots("deliver")
	b.Callback("dock_clear", func(domain.State) bool { return true })
	b.Transform("burn_fuel", func(s domain.State) domain.State { return s })

	deliver := b.Compound("deliver")
	deliver.Method("by_air").Priority(10).WhenExpr("fuel >= 50").Tasks("load", "fly").Order("load", "fly")
	deliver.Method("by_road").Tasks("load")

	b.Primitive("load").
		Action("load", map[string]any{"bay": 3}).
		When("dock_clear").
		ExpectSet(map[string]any{"cargo": "loaded"}).
		Cost(1.5)
	b.Primitive("fly").
		Action("fly", nil).
		Effect("burn_fuel").
		Duration(2)

	d, err := b.Build()
	require.NoError(t, err)

	out, err := codec.Marshal(d)
	require.NoError(t, err)

	d2, err := codec.Unmarshal(out, registrations()...)
	require.NoError(t, err)

	// The marshaled form is canonical, so a second trip is byte-identical.
	out2, err := codec.Marshal(d2)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(out2))

	assert.Equal(t, d.TaskNames(), d2.TaskNames())
	assert.Equal(t, d.Workflows(), d2.Workflows())
	assert.Equal(t, d.DefaultRoots(), d2.DefaultRoots())

	load, _ := d2.Task("load")
	assert.Equal(t, 1.5, load.Cost)
	assert.Equal(t, "dock_clear", load.Preconditions[0].Callback)

	deliver2, _ := d2.Task("deliver")
	require.Len(t, deliver2.Methods, 2)
	assert.Equal(t, 10, deliver2.Methods[0].Priority)
	assert.Equal(t, domain.DefaultPriority, deliver2.Methods[1].Priority)
}

func TestMarshal_InlinePredicateNotSerializable(t *testing.T) {
	b := dsl.New("inline").Allow("p", "workflow.p")
	b.Primitive("p").Action("p", nil).WhenFunc(func(domain.State) bool { return true })

	d, err := b.Build()
	require.NoError(t, err)

	_, err = codec.Marshal(d)
	require.ErrorIs(t, err, domain.ErrNotSerializable)
	assert.Contains(t, err.Error(), `"p"`)
}
