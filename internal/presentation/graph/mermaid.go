// Package graph renders the task network for visualization.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arborhq/arbor/pkg/domain"
)

// Overlay marks one accepted plan's decisions on the graph.
type Overlay struct {
	// Decisions is the traversal record whose tasks are highlighted.
	Decisions domain.MTR
}

// Mermaid renders the domain's task network as a Mermaid flowchart. Every
// defined task is declared exactly once: default roots as circles, other
// compounds as rectangles, primitives as subroutines. Method edges carry the
// method name and priority; a subtask reference with no definition becomes a
// dashed placeholder.
func Mermaid(d *domain.Domain, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	roots := make(map[string]bool)
	for _, r := range d.DefaultRoots() {
		roots[r] = true
	}

	missing := make(map[string]bool)
	for _, task := range d.Tasks() {
		safeID := sanitizeID(task.Name)

		opener, closer := "[", "]"
		switch {
		case roots[task.Name]:
			opener, closer = "((", "))"
		case task.IsPrimitive():
			opener, closer = "[[", "]]"
		}

		label := task.Name
		if task.Background {
			label += "<br/>background"
		}
		if task.Cost != 0 {
			label += fmt.Sprintf("<br/>cost %g", task.Cost)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		for _, m := range task.Methods {
			arrow := fmt.Sprintf("-- \"%s (%d)\" -->", m.Name, m.Priority)
			for _, sub := range m.Subtasks {
				if _, ok := d.Task(sub); !ok {
					missing[sub] = true
				}
				sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeID(sub)))
			}
		}
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)

		sb.WriteString("\n    %% Undefined references\n")
		sb.WriteString("    classDef missing stroke-dasharray: 5 5,color:#000;\n")
		for _, name := range names {
			safeID := sanitizeID(name)
			sb.WriteString(fmt.Sprintf("    %s[\"%s?\"]\n", safeID, name))
			sb.WriteString(fmt.Sprintf("    class %s missing;\n", safeID))
		}
	}

	if overlay != nil && len(overlay.Decisions) > 0 {
		sb.WriteString("\n    %% Plan decisions\n")
		sb.WriteString("    classDef chosen fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		seen := make(map[string]bool)
		for _, c := range overlay.Decisions {
			safeID := sanitizeID(c.Task)
			if seen[safeID] {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s chosen;\n", safeID))
		}
	}

	return sb.String()
}

// sanitizeID folds characters Mermaid treats as syntax into underscores.
// Labels keep the original name.
func sanitizeID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
