package planner

import "github.com/arborhq/arbor/pkg/domain"

// simulateEffects applies the task's expected effects to the planning state
// in declared order, each consuming and returning a state. The task's real
// effects are executor metadata and are never read here. A background task
// additionally records its name into the background set of the resulting
// state.
func simulateEffects(d *domain.Domain, task *domain.Task, st domain.State) domain.State {
	next := st
	for i := range task.ExpectedEffects {
		next = task.ExpectedEffects[i].Apply(d, next)
	}
	if task.Background {
		next = next.WithBackgroundTask(task.Name)
	}
	return next
}
