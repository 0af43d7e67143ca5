// Package loam loads planning domains from a loam document repository.
//
// Every document defines one task: the frontmatter is the definition and the
// markdown body is operator documentation, never part of the model. Task
// names come from the filename, or from an explicit frontmatter id; the same
// name defined by two files is an error, not a merge. A reserved document
// named "domain" carries domain-level settings (name, action registry, state
// schema, default roots).
//
// The Loader implements ports.DomainSource and ports.Watchable, so a
// repository can back one-shot planning, watch mode, and the HTTP server
// alike.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/arborhq/arbor/internal/compiler"
	"github.com/arborhq/arbor/internal/dto"
	"github.com/arborhq/arbor/pkg/domain"
)

// watchPattern covers every serialization loam accepts for documents.
const watchPattern = "**/*.{md,json,yaml,yml}"

// Loader builds domains from a loam repository.
type Loader struct {
	repo       *loam.TypedRepository[TaskMetadata]
	name       string
	callbacks  map[string]domain.CallbackFunc
	transforms map[string]domain.TransformFunc
}

// Option configures a Loader.
type Option func(*Loader)

// WithCallback registers a named predicate for condition references to
// resolve against.
func WithCallback(name string, fn domain.CallbackFunc) Option {
	return func(l *Loader) { l.callbacks[name] = fn }
}

// WithTransform registers a named state transform for effect references to
// resolve against.
func WithTransform(name string, fn domain.TransformFunc) Option {
	return func(l *Loader) { l.transforms[name] = fn }
}

// WithName sets the fallback domain name used when the manifest document
// does not declare one.
func WithName(name string) Option {
	return func(l *Loader) { l.name = name }
}

// New wraps an already initialized typed repository.
func New(repo *loam.TypedRepository[TaskMetadata], opts ...Option) *Loader {
	l := &Loader{
		repo:       repo,
		callbacks:  make(map[string]domain.CallbackFunc),
		transforms: make(map[string]domain.TransformFunc),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open initializes a loam repository at path and wraps it. Strict mode keeps
// numeric frontmatter types stable across serializations, and read-only mode
// keeps loam from adopting the directory; the planner only ever reads.
func Open(path string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid repository path %q: %w", path, err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing loam repository: %w", err)
	}

	l := New(loam.NewTypedRepository[TaskMetadata](repo), opts...)
	if l.name == "" {
		l.name = filepath.Base(absPath)
	}
	return l, nil
}

// Load reads every document, assembles the domain document, and builds it.
// The returned domain passed full construction validation; a repository with
// dangling ordering constraints or unregistered transforms fails here.
func (l *Loader) Load(ctx context.Context) (*domain.Domain, error) {
	docs, err := l.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing repository documents: %w", err)
	}

	doc := &dto.DomainDoc{Name: l.name}
	seen := make(map[string]string, len(docs))

	for _, d := range docs {
		rawID := d.Data.ID
		if rawID == "" {
			rawID = d.ID
		}
		id := trimExtension(rawID)

		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("task %q is defined in both %q and %q", id, prev, d.ID)
		}
		seen[id] = d.ID

		if id == ManifestID {
			if err := applyManifest(doc, d.Data); err != nil {
				return nil, err
			}
			continue
		}

		td, err := taskDoc(id, d.Data)
		if err != nil {
			return nil, err
		}
		doc.Tasks = append(doc.Tasks, td)
	}

	// List order is filesystem order; compile deterministically.
	sort.Slice(doc.Tasks, func(i, j int) bool { return doc.Tasks[i].Name < doc.Tasks[j].Name })

	cfg, err := compiler.Compile(doc)
	if err != nil {
		return nil, err
	}
	cfg.Callbacks = l.callbacks
	cfg.Transforms = l.transforms
	return domain.New(cfg)
}

// Watch signals whenever any document in the repository changes. Signals are
// coalesced; a consumer mid-reload sees one pending signal at most.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.repo.Watch(ctx, watchPattern)
	if err != nil {
		return nil, fmt.Errorf("starting repository watch: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

// applyManifest copies domain-level settings from the reserved document.
func applyManifest(doc *dto.DomainDoc, meta TaskMetadata) error {
	if meta.definesTask() {
		return fmt.Errorf("reserved document %q must not define a task", ManifestID)
	}
	if meta.Name != "" {
		doc.Name = meta.Name
	}
	doc.Workflows = meta.Workflows
	doc.Roots = meta.Roots

	if len(meta.StateSchema) > 0 {
		types := make(map[string]string, len(meta.StateSchema))
		for key, v := range meta.StateSchema {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("state_schema.%s: expected a type name, got %T", key, v)
			}
			types[key] = s
		}
		doc.StateSchema = types
	}
	return nil
}

// taskDoc converts one document's frontmatter into a task definition. The
// raw polymorphic fields go through the shorthand decode hooks, so bare
// strings and booleans work in frontmatter exactly as they do in YAML
// domain files.
func taskDoc(id string, meta TaskMetadata) (dto.TaskDoc, error) {
	raw := make(map[string]any)
	if meta.Type != "" {
		raw["type"] = meta.Type
	}
	if meta.Action != nil {
		raw["action"] = meta.Action
	}
	if len(meta.Preconditions) > 0 {
		raw["preconditions"] = meta.Preconditions
	}
	if len(meta.Effects) > 0 {
		raw["effects"] = meta.Effects
	}
	if len(meta.ExpectedEffects) > 0 {
		raw["expected_effects"] = meta.ExpectedEffects
	}
	if meta.Cost != nil {
		raw["cost"] = meta.Cost
	}
	if meta.Duration != nil {
		raw["duration"] = meta.Duration
	}
	if meta.Background {
		raw["background"] = true
	}
	if len(meta.Methods) > 0 {
		raw["methods"] = meta.Methods
	}

	var doc dto.TaskDoc
	if err := dto.Decode(raw, &doc); err != nil {
		return dto.TaskDoc{}, fmt.Errorf("task %q: %w", id, err)
	}
	doc.Name = id
	return doc, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
