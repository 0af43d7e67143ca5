// Package debug renders decomposition traces as indented text trees.
package debug

import (
	"fmt"
	"strings"

	"github.com/arborhq/arbor/pkg/domain"
)

// Render formats one trace per planned root. Tasks and method attempts are
// marked ✓ (succeeded), ✗ (failed), or ⊘ (pruned by the reference MTR);
// condition traces print in evaluation order.
func Render(nodes []*domain.DebugNode) string {
	var sb strings.Builder
	for _, n := range nodes {
		writeNode(&sb, n, 0)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n *domain.DebugNode, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s %s (%s)%s\n", indent, mark(n.Success, false), n.Task, n.Type, conditionTrace(n.Conditions))

	for i := range n.Attempts {
		a := &n.Attempts[i]
		fmt.Fprintf(sb, "%s  %s %s (priority %d)%s\n",
			indent, mark(a.Success, a.Pruned), a.Method, a.Priority, conditionTrace(a.Conditions))
		for _, child := range a.Subtree {
			writeNode(sb, child, depth+2)
		}
	}
}

func mark(success, pruned bool) string {
	switch {
	case pruned:
		return "⊘"
	case success:
		return "✓"
	default:
		return "✗"
	}
}

// conditionTrace prints recorded condition results. They are stored most
// recent first; evaluation order reads better.
func conditionTrace(conds []bool) string {
	if len(conds) == 0 {
		return ""
	}
	marks := make([]string, len(conds))
	for i, ok := range conds {
		m := "✗"
		if ok {
			m = "✓"
		}
		marks[len(conds)-1-i] = m
	}
	return " conditions " + strings.Join(marks, "")
}
