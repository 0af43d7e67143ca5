package planner

import "github.com/arborhq/arbor/pkg/domain"

// evalConditions evaluates conditions in declared order, short-circuiting on
// the first false. The trace holds one entry per condition actually
// evaluated, most recent first, so a failed run ends with false at the head.
func evalConditions(d *domain.Domain, conds []domain.Condition, st domain.State) (bool, []bool) {
	var trace []bool
	for i := range conds {
		ok := conds[i].Evaluate(d, st)
		trace = append([]bool{ok}, trace...)
		if !ok {
			return false, trace
		}
	}
	return true, trace
}
