// Package codec serializes domains to and from their YAML document form.
//
// Documents carry tasks, the action registry, the optional state schema, and
// default roots. Callbacks and transforms appear in documents as names only;
// Unmarshal resolves them against the registrations supplied through options,
// and construction fails closed on dangling transform references. Domains
// holding inline functions do not serialize: Marshal reports
// domain.ErrNotSerializable rather than silently dropping behavior.
package codec

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arborhq/arbor/internal/compiler"
	"github.com/arborhq/arbor/internal/dto"
	"github.com/arborhq/arbor/pkg/domain"
)

// Option supplies runtime registrations to Unmarshal.
type Option func(*registry)

type registry struct {
	callbacks  map[string]domain.CallbackFunc
	transforms map[string]domain.TransformFunc
}

// WithCallback registers a named predicate for condition references to
// resolve against.
func WithCallback(name string, fn domain.CallbackFunc) Option {
	return func(r *registry) { r.callbacks[name] = fn }
}

// WithTransform registers a named state transform for effect references to
// resolve against.
func WithTransform(name string, fn domain.TransformFunc) Option {
	return func(r *registry) { r.transforms[name] = fn }
}

// Unmarshal parses a YAML domain document and builds the domain. Unknown
// top-level and task fields are rejected. The built domain is subject to the
// full domain.New validation, so a document referencing a transform that was
// not registered fails here, not at planning time.
func Unmarshal(data []byte, opts ...Option) (*domain.Domain, error) {
	reg := &registry{
		callbacks:  make(map[string]domain.CallbackFunc),
		transforms: make(map[string]domain.TransformFunc),
	}
	for _, opt := range opts {
		opt(reg)
	}

	var doc dto.DomainDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing domain document: %w", err)
	}

	cfg, err := compiler.Compile(&doc)
	if err != nil {
		return nil, err
	}
	cfg.Callbacks = reg.callbacks
	cfg.Transforms = reg.transforms
	return domain.New(cfg)
}

// Marshal renders the domain as a canonical YAML document: tasks ordered by
// name, task types explicit, method names and priorities filled in.
func Marshal(d *domain.Domain) ([]byte, error) {
	doc, err := compiler.Export(d)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}
