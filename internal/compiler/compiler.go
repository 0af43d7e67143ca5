// Package compiler converts between the document form of a domain and its
// in-memory model. Compile maps a decoded document onto a domain.Config,
// inferring task types and applying defaults; Export walks a built domain
// back into a document. The two are inverses for domains whose conditions
// and effects are named references or literals throughout.
package compiler

import (
	"errors"
	"fmt"

	"github.com/arborhq/arbor/internal/dto"
	"github.com/arborhq/arbor/pkg/domain"
)

// Compile maps the document onto a domain.Config. Runtime registries
// (callbacks and transforms) are never part of a document; callers inject
// them before handing the config to domain.New, which performs the full
// reference validation.
func Compile(doc *dto.DomainDoc) (domain.Config, error) {
	if doc == nil {
		return domain.Config{}, errors.New("nil domain document")
	}

	cfg := domain.Config{
		Name:        doc.Name,
		Workflows:   doc.Workflows,
		StateSchema: doc.StateSchema,
		Roots:       doc.Roots,
		Tasks:       make([]*domain.Task, 0, len(doc.Tasks)),
	}
	for _, td := range doc.Tasks {
		t, err := compileTask(td)
		if err != nil {
			return domain.Config{}, err
		}
		cfg.Tasks = append(cfg.Tasks, t)
	}
	return cfg, nil
}

func compileTask(td dto.TaskDoc) (*domain.Task, error) {
	if td.Name == "" {
		return nil, errors.New("task without a name")
	}

	typ, err := taskType(td)
	if err != nil {
		return nil, err
	}

	t := &domain.Task{
		Name:       td.Name,
		Type:       typ,
		Cost:       td.Cost,
		Duration:   td.Duration,
		Background: td.Background,
	}
	if td.Action != nil {
		t.Action = &domain.Action{Name: td.Action.Name, Params: td.Action.Params}
	}

	if t.Preconditions, err = compileConditions(td.Preconditions); err != nil {
		return nil, fmt.Errorf("task %q: %w", td.Name, err)
	}
	if t.Effects, err = compileEffects(td.Effects); err != nil {
		return nil, fmt.Errorf("task %q: %w", td.Name, err)
	}
	if t.ExpectedEffects, err = compileEffects(td.ExpectedEffects); err != nil {
		return nil, fmt.Errorf("task %q: %w", td.Name, err)
	}

	for i, md := range td.Methods {
		m, err := compileMethod(md)
		if err != nil {
			label := md.Name
			if label == "" {
				label = fmt.Sprintf("method%d", i+1)
			}
			return nil, fmt.Errorf("task %q method %q: %w", td.Name, label, err)
		}
		t.Methods = append(t.Methods, m)
	}
	return t, nil
}

// taskType resolves the document's task type, inferring it from shape when
// the field is absent. A task carrying both an action and methods is
// ambiguous and must declare its type.
func taskType(td dto.TaskDoc) (string, error) {
	if td.Type != "" {
		return td.Type, nil
	}
	hasAction := td.Action != nil
	hasMethods := len(td.Methods) > 0
	switch {
	case hasAction && hasMethods:
		return "", fmt.Errorf("task %q carries both an action and methods; declare an explicit type", td.Name)
	case hasAction:
		return domain.TaskPrimitive, nil
	case hasMethods:
		return domain.TaskCompound, nil
	default:
		return "", fmt.Errorf("task %q carries neither an action nor methods", td.Name)
	}
}

func compileMethod(md dto.MethodDoc) (domain.Method, error) {
	m := domain.Method{
		Name:     md.Name,
		Priority: domain.DefaultPriority,
		Subtasks: md.Subtasks,
	}
	if md.Priority != nil {
		m.Priority = *md.Priority
	}

	var err error
	if m.Conditions, err = compileConditions(md.Conditions); err != nil {
		return domain.Method{}, err
	}
	for _, od := range md.Ordering {
		m.Ordering = append(m.Ordering, domain.OrderingPair{Before: od.Before, After: od.After})
	}
	return m, nil
}

func compileConditions(docs []dto.ConditionDoc) ([]domain.Condition, error) {
	var out []domain.Condition
	for i, cd := range docs {
		c, err := compileCondition(cd)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func compileCondition(cd dto.ConditionDoc) (domain.Condition, error) {
	set := 0
	if cd.Callback != "" {
		set++
	}
	if cd.Expr != "" {
		set++
	}
	if cd.Literal != nil {
		set++
	}
	if set > 1 {
		return domain.Condition{}, errors.New("sets more than one of callback, expr, literal")
	}

	switch {
	case cd.Callback != "":
		return domain.Condition{Callback: cd.Callback}, nil
	case cd.Expr != "":
		return domain.Condition{Expr: cd.Expr}, nil
	case cd.Literal != nil:
		return domain.Condition{Literal: *cd.Literal}, nil
	default:
		return domain.Condition{}, errors.New("sets none of callback, expr, literal")
	}
}

func compileEffects(docs []dto.EffectDoc) ([]domain.Effect, error) {
	var out []domain.Effect
	for i, ed := range docs {
		e, err := compileEffect(ed)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i+1, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func compileEffect(ed dto.EffectDoc) (domain.Effect, error) {
	switch {
	case ed.Transform != "" && len(ed.Set) > 0:
		return domain.Effect{}, errors.New("sets both transform and set")
	case ed.Transform != "":
		return domain.Effect{Ref: ed.Transform}, nil
	case len(ed.Set) > 0:
		return domain.Effect{Set: ed.Set}, nil
	default:
		return domain.Effect{}, errors.New("sets neither transform nor set")
	}
}

// Export walks the domain back into its document form. The output is
// canonical: task types are explicit, method names and priorities are
// filled in. Domains carrying inline predicate or transform functions
// cannot be expressed as documents; Export reports domain.ErrNotSerializable.
func Export(d *domain.Domain) (*dto.DomainDoc, error) {
	doc := &dto.DomainDoc{
		Name:        d.Name(),
		StateSchema: d.StateSchema(),
		Workflows:   d.Workflows(),
		Roots:       d.DefaultRoots(),
	}
	for _, t := range d.Tasks() {
		td, err := exportTask(t)
		if err != nil {
			return nil, err
		}
		doc.Tasks = append(doc.Tasks, td)
	}
	return doc, nil
}

func exportTask(t *domain.Task) (dto.TaskDoc, error) {
	td := dto.TaskDoc{
		Name:       t.Name,
		Type:       t.Type,
		Cost:       t.Cost,
		Duration:   t.Duration,
		Background: t.Background,
	}
	if t.Action != nil {
		td.Action = &dto.ActionDoc{Name: t.Action.Name, Params: t.Action.Params}
	}

	var err error
	if td.Preconditions, err = exportConditions(t.Preconditions); err != nil {
		return dto.TaskDoc{}, fmt.Errorf("task %q: %w", t.Name, err)
	}
	if td.Effects, err = exportEffects(t.Effects); err != nil {
		return dto.TaskDoc{}, fmt.Errorf("task %q: %w", t.Name, err)
	}
	if td.ExpectedEffects, err = exportEffects(t.ExpectedEffects); err != nil {
		return dto.TaskDoc{}, fmt.Errorf("task %q: %w", t.Name, err)
	}

	for _, m := range t.Methods {
		priority := m.Priority
		md := dto.MethodDoc{
			Name:     m.Name,
			Priority: &priority,
			Subtasks: m.Subtasks,
		}
		if md.Conditions, err = exportConditions(m.Conditions); err != nil {
			return dto.TaskDoc{}, fmt.Errorf("task %q method %q: %w", t.Name, m.Name, err)
		}
		for _, o := range m.Ordering {
			md.Ordering = append(md.Ordering, dto.OrderingDoc{Before: o.Before, After: o.After})
		}
		td.Methods = append(td.Methods, md)
	}
	return td, nil
}

func exportConditions(conds []domain.Condition) ([]dto.ConditionDoc, error) {
	var out []dto.ConditionDoc
	for _, c := range conds {
		switch {
		case c.Predicate != nil:
			return nil, fmt.Errorf("inline predicate: %w", domain.ErrNotSerializable)
		case c.Callback != "":
			out = append(out, dto.ConditionDoc{Callback: c.Callback})
		case c.Expr != "":
			out = append(out, dto.ConditionDoc{Expr: c.Expr})
		default:
			lit := c.Literal
			out = append(out, dto.ConditionDoc{Literal: &lit})
		}
	}
	return out, nil
}

func exportEffects(effects []domain.Effect) ([]dto.EffectDoc, error) {
	var out []dto.EffectDoc
	for _, e := range effects {
		switch {
		case e.Transform != nil:
			return nil, fmt.Errorf("inline transform: %w", domain.ErrNotSerializable)
		case e.Ref != "":
			out = append(out, dto.EffectDoc{Transform: e.Ref})
		case len(e.Set) > 0:
			out = append(out, dto.EffectDoc{Set: e.Set})
		default:
			return nil, fmt.Errorf("empty effect: %w", domain.ErrNotSerializable)
		}
	}
	return out, nil
}
