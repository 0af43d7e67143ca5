package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
)

type piiMiddleware struct {
	next     ports.PlanStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks state and step parameter
// values whose keys match any of the given patterns before a record is
// persisted. Masking is one-way: Load returns what was stored.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, 0, len(patternStrings))
	for _, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			panic(fmt.Sprintf("middleware: invalid PII pattern %q: %v", p, err))
		}
		patterns = append(patterns, re)
	}

	return func(next ports.PlanStore) ports.PlanStore {
		return &piiMiddleware{
			next:     next,
			patterns: patterns,
		}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, rec *ports.PlanRecord) error {
	masked := *rec
	masked.State = domain.State(maskMap(map[string]any(rec.State), m.patterns))
	if len(rec.Plan) > 0 {
		masked.Plan = make(domain.Plan, len(rec.Plan))
		for i, step := range rec.Plan {
			masked.Plan[i] = step
			masked.Plan[i].Params = maskMap(step.Params, m.patterns)
		}
	}
	return m.next.Save(ctx, &masked)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*ports.PlanRecord, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// maskMap returns a copy of in with the values of matching keys replaced by
// "***". Nested maps are walked recursively; the input is never mutated.
func maskMap(in map[string]any, patterns []*regexp.Regexp) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		if matchesAny(key, patterns) {
			out[key] = "***"
			continue
		}
		switch v := value.(type) {
		case map[string]any:
			out[key] = maskMap(v, patterns)
		case domain.State:
			out[key] = domain.State(maskMap(map[string]any(v), patterns))
		default:
			out[key] = value
		}
	}
	return out
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}
