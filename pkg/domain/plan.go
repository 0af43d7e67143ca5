package domain

// Step is a single action invocation in a plan: the execution-unit identifier
// resolved from the action registry, plus the action's parameters. The
// planner emits steps unexecuted; invoking the unit is the host's job.
type Step struct {
	Unit   string         `json:"unit" yaml:"unit"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Plan is the ordered sequence of action invocations the planner produced.
type Plan []Step

// Units returns the unit identifiers of the plan in order.
func (p Plan) Units() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.Unit
	}
	return out
}

// PlanOptions configures a single planning call.
type PlanOptions struct {
	// Roots are the compound tasks to decompose, in listed order. Empty falls
	// back to the domain's declared default roots, then to DefaultRootTask.
	// When more than one root is listed, each root's plan segment is
	// prepended to the accumulated plan, so the last-listed root's actions
	// appear first in the final plan.
	Roots []string

	// Reference is the MTR of a previously accepted plan. When present,
	// decomposition branches that cannot match its priority are culled.
	Reference MTR

	// Debug enables the decomposition trace. The trace never affects the
	// planning outcome.
	Debug bool

	// MaxDepth bounds compound nesting for this call; 0 uses the engine
	// default. Crossing the bound fails the branch and backtracks.
	MaxDepth int
}

// PlanOption adjusts one planning call.
type PlanOption func(*PlanOptions)

// WithRoots names the compound tasks to decompose, replacing the default
// roots.
func WithRoots(names ...string) PlanOption {
	return func(o *PlanOptions) { o.Roots = names }
}

// WithReference supplies the MTR of a previously accepted plan for culling.
func WithReference(ref MTR) PlanOption {
	return func(o *PlanOptions) { o.Reference = ref }
}

// WithDebugTree enables the decomposition trace on the result.
func WithDebugTree() PlanOption {
	return func(o *PlanOptions) { o.Debug = true }
}

// WithDepthLimit bounds compound nesting for this call.
func WithDepthLimit(n int) PlanOption {
	return func(o *PlanOptions) { o.MaxDepth = n }
}

// NewPlanOptions folds options into a PlanOptions value.
func NewPlanOptions(opts ...PlanOption) PlanOptions {
	var o PlanOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// PlanResult is the outcome of a successful planning call.
type PlanResult struct {
	// Plan is the emitted action sequence.
	Plan Plan `json:"plan"`

	// MTR records the method choices behind the plan, most recent first.
	MTR MTR `json:"mtr"`

	// State is the simulated world state after the plan, the accumulated
	// result of every expected effect.
	State State `json:"state"`

	// Debug holds one trace per root when PlanOptions.Debug was set.
	Debug []*DebugNode `json:"debug,omitempty"`
}
