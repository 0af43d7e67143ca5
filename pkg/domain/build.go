package domain

import (
	"fmt"
	"sort"

	"github.com/arborhq/arbor/pkg/schema"
)

// Config is the raw material a Domain is assembled from. The fluent builder
// in pkg/dsl and the codec produce Configs; New is the single choke point
// where all build-time validation runs.
type Config struct {
	// Name labels the domain in logs and serialized output.
	Name string

	// Tasks is the task collection. The built domain takes ownership; callers
	// must not retain or mutate the tasks afterwards.
	Tasks []*Task

	// Callbacks is the named predicate registry resolved by Condition.Callback
	// references.
	Callbacks map[string]CallbackFunc

	// Transforms is the named transform registry resolved by Effect.Ref
	// references.
	Transforms map[string]TransformFunc

	// Workflows is the action registry: action name to the opaque
	// execution-unit identifier emitted in plan steps.
	Workflows map[string]string

	// StateSchema optionally declares expected types for world-state keys
	// (see pkg/schema). New validates the declarations; the planner
	// validates states against it at plan entry.
	StateSchema map[string]string

	// Roots optionally declares the default root tasks planned when a call
	// names none. Every entry must be a defined compound task; planning
	// falls back to DefaultRootTask when the list is empty.
	Roots []string
}

// Domain is the closed, immutable set of named tasks, callbacks, transforms,
// and allowed actions a planner operates over. Built once via New and
// read-only afterwards, it is safe to share across concurrent planning calls.
type Domain struct {
	name        string
	tasks       map[string]*Task
	callbacks   map[string]CallbackFunc
	transforms  map[string]TransformFunc
	workflows   map[string]string
	stateSchema map[string]string
	roots       []string
}

// New validates the config and assembles the domain. It fails closed:
// dangling or cyclic ordering constraints, unregistered actions or
// transforms, and uncompilable condition expressions all reject the whole
// domain.
func New(cfg Config) (*Domain, error) {
	name := cfg.Name
	if name == "" {
		name = "domain"
	}

	d := &Domain{
		name:        name,
		tasks:       make(map[string]*Task, len(cfg.Tasks)),
		callbacks:   copyMap(cfg.Callbacks),
		transforms:  copyMap(cfg.Transforms),
		workflows:   copyMap(cfg.Workflows),
		stateSchema: copyMap(cfg.StateSchema),
	}

	if _, err := schema.ParseTypeMap(d.stateSchema); err != nil {
		return nil, fmt.Errorf("domain %q: %v: %w", name, err, ErrBadSchema)
	}

	for _, t := range cfg.Tasks {
		if t == nil || t.Name == "" {
			return nil, fmt.Errorf("domain %q: task without a name", name)
		}
		if _, exists := d.tasks[t.Name]; exists {
			return nil, fmt.Errorf("task %q: %w", t.Name, ErrDuplicateTask)
		}

		switch t.Type {
		case TaskPrimitive:
			if err := d.validatePrimitive(t); err != nil {
				return nil, err
			}
		case TaskCompound:
			if err := d.validateCompound(t); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("task %q: unknown task type %q", t.Name, t.Type)
		}

		d.tasks[t.Name] = t
	}

	for _, root := range cfg.Roots {
		t, ok := d.tasks[root]
		if !ok {
			return nil, fmt.Errorf("domain %q root task %q: %w", name, root, ErrRootNotFound)
		}
		if !t.IsCompound() {
			return nil, fmt.Errorf("domain %q root task %q: %w", name, root, ErrRootNotCompound)
		}
	}
	d.roots = append([]string(nil), cfg.Roots...)

	return d, nil
}

func (d *Domain) validatePrimitive(t *Task) error {
	if t.Action == nil || t.Action.Name == "" {
		return fmt.Errorf("primitive task %q has no action", t.Name)
	}
	if _, ok := d.workflows[t.Action.Name]; !ok {
		return fmt.Errorf("primitive task %q action %q: %w", t.Name, t.Action.Name, ErrUnknownAction)
	}
	if err := compileConditions(t.Name, t.Preconditions); err != nil {
		return err
	}
	if err := d.checkTransformRefs(t.Name, t.Effects); err != nil {
		return err
	}
	return d.checkTransformRefs(t.Name, t.ExpectedEffects)
}

func (d *Domain) validateCompound(t *Task) error {
	for i := range t.Methods {
		m := &t.Methods[i]
		if m.Name == "" {
			m.Name = fmt.Sprintf("method%d", i+1)
		}
		if err := compileConditions(t.Name, m.Conditions); err != nil {
			return err
		}
		if err := validateOrdering(t.Name, m); err != nil {
			return err
		}
		if _, err := ResolveOrder(m.Subtasks, m.Ordering); err != nil {
			return fmt.Errorf("task %q method %q: %w", t.Name, m.Name, err)
		}
	}
	return nil
}

func (d *Domain) checkTransformRefs(task string, effects []Effect) error {
	for _, e := range effects {
		if e.Ref == "" {
			continue
		}
		if _, ok := d.transforms[e.Ref]; !ok {
			return fmt.Errorf("task %q effect %q: %w", task, e.Ref, ErrUnknownTransform)
		}
	}
	return nil
}

func compileConditions(task string, conds []Condition) error {
	for i := range conds {
		if err := conds[i].compile(); err != nil {
			return fmt.Errorf("task %q condition %q: %w: %v", task, conds[i].Expr, ErrBadExpression, err)
		}
	}
	return nil
}

// Name returns the domain's label.
func (d *Domain) Name() string {
	return d.name
}

// Task returns the named task.
func (d *Domain) Task(name string) (*Task, bool) {
	t, ok := d.tasks[name]
	return t, ok
}

// TaskNames returns all task names, sorted.
func (d *Domain) TaskNames() []string {
	return sortedKeys(d.tasks)
}

// Tasks returns all tasks ordered by name.
func (d *Domain) Tasks() []*Task {
	names := d.TaskNames()
	out := make([]*Task, len(names))
	for i, name := range names {
		out[i] = d.tasks[name]
	}
	return out
}

// Callback returns the named predicate from the callback registry.
func (d *Domain) Callback(name string) (CallbackFunc, bool) {
	cb, ok := d.callbacks[name]
	return cb, ok
}

// CallbackNames returns the registered callback names, sorted.
func (d *Domain) CallbackNames() []string {
	return sortedKeys(d.callbacks)
}

// Transform returns the named transform from the transform registry.
func (d *Domain) Transform(name string) (TransformFunc, bool) {
	fn, ok := d.transforms[name]
	return fn, ok
}

// TransformNames returns the registered transform names, sorted.
func (d *Domain) TransformNames() []string {
	return sortedKeys(d.transforms)
}

// Workflow resolves an action name to its execution-unit identifier.
func (d *Domain) Workflow(action string) (string, bool) {
	unit, ok := d.workflows[action]
	return unit, ok
}

// Workflows returns a copy of the action registry.
func (d *Domain) Workflows() map[string]string {
	return copyMap(d.workflows)
}

// StateSchema returns a copy of the declared world-state schema, or nil when
// none was declared.
func (d *Domain) StateSchema() map[string]string {
	if len(d.stateSchema) == 0 {
		return nil
	}
	return copyMap(d.stateSchema)
}

// DefaultRoots returns the declared default root tasks, or nil when the
// domain relies on DefaultRootTask.
func (d *Domain) DefaultRoots() []string {
	return append([]string(nil), d.roots...)
}

func copyMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](in map[string]V) []string {
	out := make([]string, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
