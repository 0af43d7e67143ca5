package loam

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhq/arbor/internal/testutils"
	"github.com/arborhq/arbor/pkg/domain"
)

// deliveryRepo is a complete repository: a manifest plus one document per
// task, mixing markdown frontmatter with a pure-YAML definition.
var deliveryRepo = map[string]string{
	"domain.md": `---
name: delivery
workflows:
  load_cargo: units/load
  fly_drone: units/fly
  drive_truck: units/drive
state_schema:
  fuel: int
  cargo: string
roots:
  - deliver
---
# Delivery

Operator notes live in the body and never reach the planner.
`,
	"deliver.md": `---
methods:
  - name: by_air
    priority: 10
    conditions:
      - expr: fuel > 20
    subtasks: [load, fly]
    ordering:
      - before: load
        after: fly
  - name: by_road
    subtasks: [load, drive]
---
Deliver the cargo.
`,
	"load.md": `---
action:
  name: load_cargo
  params:
    bay: 3
expected_effects:
  - set:
      cargo: loaded
---
Load the cargo.
`,
	"fly.md": `---
action:
  name: fly_drone
effects:
  - burn_fuel
cost: 9.5
---
Fly the drone to the drop point.
`,
	"drive.yaml": `action:
  name: drive_truck
preconditions:
  - road_open
`,
}

func openDelivery(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	dir := t.TempDir()
	testutils.WriteRepoFiles(t, dir, files)

	loader, err := Open(dir,
		WithCallback("road_open", func(s domain.State) bool { return s["road"] == "open" }),
		WithTransform("burn_fuel", func(s domain.State) domain.State {
			s["fuel"] = 0
			return s
		}),
	)
	require.NoError(t, err)
	return loader
}

func TestLoader_BuildsDomainFromRepo(t *testing.T) {
	loader := openDelivery(t, deliveryRepo)

	d, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "delivery", d.Name())
	assert.Equal(t, []string{"deliver", "drive", "fly", "load"}, d.TaskNames())
	assert.Equal(t, []string{"deliver"}, d.DefaultRoots())
	assert.Equal(t, map[string]string{"fuel": "int", "cargo": "string"}, d.StateSchema())

	unit, ok := d.Workflow("fly_drone")
	require.True(t, ok)
	assert.Equal(t, "units/fly", unit)

	deliver, ok := d.Task("deliver")
	require.True(t, ok)
	require.True(t, deliver.IsCompound())
	require.Len(t, deliver.Methods, 2)
	assert.Equal(t, 10, deliver.Methods[0].Priority, "frontmatter priority survives strict-mode numbers")
	assert.Equal(t, domain.DefaultPriority, deliver.Methods[1].Priority)

	fly, ok := d.Task("fly")
	require.True(t, ok)
	assert.Equal(t, 9.5, fly.Cost)
	require.Len(t, fly.Effects, 1)
	assert.Equal(t, "burn_fuel", fly.Effects[0].Ref)

	load, ok := d.Task("load")
	require.True(t, ok)
	require.NotNil(t, load.Action)
	assert.Equal(t, "load_cargo", load.Action.Name)
}

func TestLoader_FrontmatterConditionsEvaluate(t *testing.T) {
	loader := openDelivery(t, deliveryRepo)

	d, err := loader.Load(context.Background())
	require.NoError(t, err)

	deliver, _ := d.Task("deliver")
	byAir := deliver.Methods[0].Conditions[0]
	assert.True(t, byAir.Evaluate(d, domain.State{"fuel": 80}))
	assert.False(t, byAir.Evaluate(d, domain.State{"fuel": 5}))

	drive, _ := d.Task("drive")
	roadOpen := drive.Preconditions[0]
	assert.True(t, roadOpen.Evaluate(d, domain.State{"road": "open"}))
	assert.False(t, roadOpen.Evaluate(d, domain.State{"road": "flooded"}))
}

func TestLoader_ExplicitIDOverridesFilename(t *testing.T) {
	files := map[string]string{
		"fly-v2.md": `---
id: fly
action:
  name: fly_drone
---
Second revision of the fly task.
`,
		"domain.md": `---
name: delivery
workflows:
  fly_drone: units/fly
---
`,
	}
	loader := openDelivery(t, files)

	d, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fly"}, d.TaskNames())
}

func TestLoader_CollisionAcrossExtensions(t *testing.T) {
	files := map[string]string{
		"deliver.md": `---
methods:
  - subtasks: [deliver]
---
`,
		"deliver.yaml": `methods:
  - subtasks: [deliver]
`,
	}
	loader := openDelivery(t, files)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliver")
	assert.Contains(t, err.Error(), "defined in both")
}

func TestLoader_ManifestMustNotDefineTask(t *testing.T) {
	files := map[string]string{
		"domain.md": `---
name: delivery
action:
  name: oops
---
`,
	}
	loader := openDelivery(t, files)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved document")
}

func TestLoader_MissingManifestFallsBackToDirName(t *testing.T) {
	files := map[string]string{
		"solo.md": `---
methods:
  - subtasks: [solo]
---
`,
	}
	dir := t.TempDir()
	testutils.WriteRepoFiles(t, dir, files)

	loader, err := Open(dir)
	require.NoError(t, err)

	d, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, d.Name())
	assert.NotEqual(t, "domain", d.Name(), "name should come from the directory, not the builder default")
}

func TestLoader_DanglingTransformFails(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteRepoFiles(t, dir, map[string]string{
		"fly.md": `---
action:
  name: fly_drone
effects:
  - burn_fuel
---
`,
		"domain.md": `---
workflows:
  fly_drone: units/fly
---
`,
	})

	// No transform registration this time.
	loader, err := Open(dir)
	require.NoError(t, err)

	_, err = loader.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrUnknownTransform)
}

func TestLoader_BadFrontmatterNamesTask(t *testing.T) {
	files := map[string]string{
		"broken.md": `---
preconditions:
  - callback: a
    expr: b
methods:
  - subtasks: [x]
---
`,
	}
	loader := openDelivery(t, files)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"broken"`)
}

func TestLoader_WatchClosesOnCancel(t *testing.T) {
	loader := openDelivery(t, deliveryRepo)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel did not close after cancel")
	}
}
