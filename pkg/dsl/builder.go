package dsl

import (
	"fmt"

	"github.com/arborhq/arbor/pkg/domain"
)

// Builder manages domain construction. Tasks keep their declaration order in
// the built domain's config.
type Builder struct {
	name       string
	tasks      []*domain.Task
	callbacks  map[string]domain.CallbackFunc
	transforms map[string]domain.TransformFunc
	workflows  map[string]string
	schema     map[string]string
	roots      []string
}

// New creates a new domain builder.
func New(name string) *Builder {
	return &Builder{
		name:       name,
		callbacks:  make(map[string]domain.CallbackFunc),
		transforms: make(map[string]domain.TransformFunc),
		workflows:  make(map[string]string),
		schema:     make(map[string]string),
	}
}

// Allow registers an action name and the execution-unit identifier it
// resolves to in emitted plan steps. Every primitive's action must be
// allowed before Build.
func (b *Builder) Allow(action, unit string) *Builder {
	b.workflows[action] = unit
	return b
}

// Callback registers a named predicate for conditions to reference.
func (b *Builder) Callback(name string, fn domain.CallbackFunc) *Builder {
	b.callbacks[name] = fn
	return b
}

// Transform registers a named state transform for effects to reference.
func (b *Builder) Transform(name string, fn domain.TransformFunc) *Builder {
	b.transforms[name] = fn
	return b
}

// Schema declares the expected type of a world-state key (see pkg/schema
// for the type syntax).
func (b *Builder) Schema(key, typeName string) *Builder {
	b.schema[key] = typeName
	return b
}

// Roots declares the default root tasks planned when a call names none.
// Each must be a compound task defined before Build.
func (b *Builder) Roots(names ...string) *Builder {
	b.roots = append(b.roots, names...)
	return b
}

// Primitive adds a primitive task to the domain.
func (b *Builder) Primitive(name string) *PrimitiveBuilder {
	t := &domain.Task{Name: name, Type: domain.TaskPrimitive}
	b.tasks = append(b.tasks, t)
	return &PrimitiveBuilder{task: t, builder: b}
}

// Compound adds a compound task to the domain.
func (b *Builder) Compound(name string) *CompoundBuilder {
	t := &domain.Task{Name: name, Type: domain.TaskCompound}
	b.tasks = append(b.tasks, t)
	return &CompoundBuilder{task: t, builder: b}
}

// Build validates and assembles the domain. It fails closed on duplicate
// tasks, unregistered actions or transforms, dangling or cyclic ordering
// constraints, uncompilable expressions, and bad schema declarations.
func (b *Builder) Build() (*domain.Domain, error) {
	return domain.New(domain.Config{
		Name:        b.name,
		Tasks:       b.tasks,
		Callbacks:   b.callbacks,
		Transforms:  b.transforms,
		Workflows:   b.workflows,
		StateSchema: b.schema,
		Roots:       b.roots,
	})
}

// MustBuild is Build that panics on error. Intended for fixtures and
// examples where a broken domain is a programming error.
func (b *Builder) MustBuild() *domain.Domain {
	d, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("dsl: %v", err))
	}
	return d
}
