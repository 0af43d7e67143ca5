package domain

import (
	"fmt"
)

// ResolveOrder produces the execution order for a method's subtasks: a total
// order that satisfies every ordering pair and, among valid orders, stays
// closest to the declared subtask order. Implemented as a stable topological
// sort keyed by original index (Kahn's algorithm, always emitting the
// ready position with the smallest index).
//
// Subtask names may repeat; a pair (a, b) orders every occurrence of a before
// every occurrence of b, and (a, a) is cyclic. Pair names referencing tasks
// outside the subtask list are rejected by New before a domain is built;
// ResolveOrder ignores them.
//
// Returns ErrCyclicOrdering when the constraint graph has a cycle.
func ResolveOrder(subtasks []string, ordering []OrderingPair) ([]string, error) {
	n := len(subtasks)
	if n == 0 || len(ordering) == 0 {
		out := make([]string, n)
		copy(out, subtasks)
		return out, nil
	}

	positions := make(map[string][]int, n)
	for i, name := range subtasks {
		positions[name] = append(positions[name], i)
	}

	adj := make([][]int, n)
	inDegree := make([]int, n)
	for _, pair := range ordering {
		for _, from := range positions[pair.Before] {
			for _, to := range positions[pair.After] {
				adj[from] = append(adj[from], to)
				inDegree[to]++
			}
		}
	}

	// Ready positions kept sorted ascending so the declared order wins among
	// unconstrained candidates.
	var ready []int
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	out := make([]string, 0, n)
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		out = append(out, subtasks[next])

		for _, to := range adj[next] {
			inDegree[to]--
			if inDegree[to] == 0 {
				ready = insertSorted(ready, to)
			}
		}
	}

	if len(out) != n {
		return nil, fmt.Errorf("ordering constraints for subtasks %v: %w", subtasks, ErrCyclicOrdering)
	}
	return out, nil
}

func insertSorted(ready []int, pos int) []int {
	i := 0
	for i < len(ready) && ready[i] < pos {
		i++
	}
	ready = append(ready, 0)
	copy(ready[i+1:], ready[i:])
	ready[i] = pos
	return ready
}

// validateOrdering checks that every name in the method's ordering pairs is a
// member of its subtask list.
func validateOrdering(task string, m *Method) error {
	members := make(map[string]bool, len(m.Subtasks))
	for _, name := range m.Subtasks {
		members[name] = true
	}
	for _, pair := range m.Ordering {
		if !members[pair.Before] {
			return fmt.Errorf("task %q method %q: ordering pair (%s, %s) references %q outside subtasks: %w",
				task, m.Name, pair.Before, pair.After, pair.Before, ErrInvalidOrdering)
		}
		if !members[pair.After] {
			return fmt.Errorf("task %q method %q: ordering pair (%s, %s) references %q outside subtasks: %w",
				task, m.Name, pair.Before, pair.After, pair.After, ErrInvalidOrdering)
		}
	}
	return nil
}
