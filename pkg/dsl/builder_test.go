package dsl

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/arborhq/arbor/pkg/domain"
)

func deliveryBuilder() *Builder {
	b := New("delivery").
		Allow("load", "workflow.load").
		Allow("fly", "workflow.fly").
		Allow("drive", "workflow.drive")

	b.Primitive("load").
		Action("load", map[string]any{"bay": 3}).
		ExpectSet(map[string]any{"cargo": "loaded"})

	b.Primitive("fly").
		Action("fly", nil).
		WhenExpr("fuel >= 50").
		Cost(9.5)

	b.Primitive("drive").
		Action("drive", nil).
		WhenExpr("fuel >= 10")

	c := b.Compound("root")
	c.Method("by_air").Priority(10).Tasks("load", "fly")
	c.Method("by_road").Priority(20).Tasks("load", "drive")

	return b
}

func TestBuilder_SimpleDomain(t *testing.T) {
	d, err := deliveryBuilder().Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if d.Name() != "delivery" {
		t.Errorf("Name() = %q, want delivery", d.Name())
	}

	root, ok := d.Task("root")
	if !ok {
		t.Fatal("root task missing")
	}
	if !root.IsCompound() || len(root.Methods) != 2 {
		t.Fatalf("root = %+v", root)
	}
	if root.Methods[0].Name != "by_air" || root.Methods[0].Priority != 10 {
		t.Errorf("first method = %+v", root.Methods[0])
	}
	if !reflect.DeepEqual(root.Methods[1].Subtasks, []string{"load", "drive"}) {
		t.Errorf("by_road subtasks = %v", root.Methods[1].Subtasks)
	}

	load, _ := d.Task("load")
	if !load.IsPrimitive() || load.Action.Name != "load" {
		t.Fatalf("load = %+v", load)
	}
	if load.Action.Params["bay"] != 3 {
		t.Errorf("load params = %v", load.Action.Params)
	}

	fly, _ := d.Task("fly")
	if fly.Cost != 9.5 {
		t.Errorf("fly cost = %v", fly.Cost)
	}

	if unit, _ := d.Workflow("drive"); unit != "workflow.drive" {
		t.Errorf("drive unit = %q", unit)
	}
}

func TestBuilder_DefaultPriorityAndName(t *testing.T) {
	b := New("defaults")
	c := b.Compound("root")
	c.Method("").Tasks()

	d, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	root, _ := d.Task("root")
	if root.Methods[0].Name != "method1" {
		t.Errorf("default method name = %q, want method1", root.Methods[0].Name)
	}
	if root.Methods[0].Priority != domain.DefaultPriority {
		t.Errorf("default priority = %d, want %d", root.Methods[0].Priority, domain.DefaultPriority)
	}
}

func TestBuilder_MethodBuildersStayValidAcrossAppends(t *testing.T) {
	b := New("interleaved")
	c := b.Compound("root")

	m1 := c.Method("first")
	m2 := c.Method("second")
	// Configure out of declaration order: earlier builders must still
	// address their own method after the slice grew.
	m2.Priority(2).Tasks("b")
	m1.Priority(1).Tasks("a")

	root := c.task
	if root.Methods[0].Priority != 1 || !reflect.DeepEqual(root.Methods[0].Subtasks, []string{"a"}) {
		t.Fatalf("first method = %+v", root.Methods[0])
	}
	if root.Methods[1].Priority != 2 || !reflect.DeepEqual(root.Methods[1].Subtasks, []string{"b"}) {
		t.Fatalf("second method = %+v", root.Methods[1])
	}
}

func TestBuilder_OrderingConstraints(t *testing.T) {
	b := New("ordered")
	c := b.Compound("root")
	c.Method("m").Priority(1).Tasks("x", "y").Order("y", "x")

	d, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	root, _ := d.Task("root")
	want := []domain.OrderingPair{{Before: "y", After: "x"}}
	if !reflect.DeepEqual(root.Methods[0].Ordering, want) {
		t.Errorf("ordering = %v, want %v", root.Methods[0].Ordering, want)
	}
}

func TestBuilder_ConditionsAndRegistries(t *testing.T) {
	b := New("conds").
		Allow("go", "workflow.go").
		Callback("ready", func(domain.State) bool { return true }).
		Transform("burn", func(s domain.State) domain.State { return s })

	b.Primitive("go").
		Action("go", nil).
		When("ready").
		WhenLiteral(true).
		WhenFunc(func(domain.State) bool { return true }).
		Expect("burn").
		Effect("burn")

	d, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	task, _ := d.Task("go")
	if len(task.Preconditions) != 3 {
		t.Fatalf("preconditions = %+v", task.Preconditions)
	}
	if task.Preconditions[0].Callback != "ready" {
		t.Errorf("first condition = %+v", task.Preconditions[0])
	}
	if !reflect.DeepEqual(d.CallbackNames(), []string{"ready"}) {
		t.Errorf("callbacks = %v", d.CallbackNames())
	}
	if !reflect.DeepEqual(d.TransformNames(), []string{"burn"}) {
		t.Errorf("transforms = %v", d.TransformNames())
	}
}

func TestBuilder_Schema(t *testing.T) {
	b := New("typed").Schema("fuel", "int").Schema("stops", "[string]")
	b.Compound("root").Method("m").Priority(1)

	d, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	want := map[string]string{"fuel": "int", "stops": "[string]"}
	if !reflect.DeepEqual(d.StateSchema(), want) {
		t.Errorf("schema = %v, want %v", d.StateSchema(), want)
	}
}

func TestBuilder_Roots(t *testing.T) {
	b := New("rooted").Roots("mission")
	b.Compound("mission").Method("m").Priority(1)

	d, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if got := d.DefaultRoots(); len(got) != 1 || got[0] != "mission" {
		t.Errorf("roots = %v, want [mission]", got)
	}
}

func TestBuilder_RootsFailClosed(t *testing.T) {
	b := New("rooted").Roots("mission")
	b.Compound("other").Method("m").Priority(1)

	if _, err := b.Build(); !errors.Is(err, domain.ErrRootNotFound) {
		t.Fatalf("expected ErrRootNotFound, got %v", err)
	}
}

func TestBuilder_BuildFailsClosed(t *testing.T) {
	b := New("broken")
	b.Primitive("p").Action("unregistered", nil)

	_, err := b.Build()
	if !errors.Is(err, domain.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestBuilder_BadSchemaFailsClosed(t *testing.T) {
	b := New("broken").Schema("fuel", "number")
	b.Compound("root").Method("m")

	_, err := b.Build()
	if !errors.Is(err, domain.ErrBadSchema) {
		t.Fatalf("expected ErrBadSchema, got %v", err)
	}
}

func TestMustBuild_PanicsOnError(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustBuild() should panic on invalid domain")
		}
		if !strings.Contains(r.(string), "dsl:") {
			t.Errorf("panic message = %v", r)
		}
	}()

	b := New("broken")
	b.Primitive("p").Action("unregistered", nil)
	b.MustBuild()
}
