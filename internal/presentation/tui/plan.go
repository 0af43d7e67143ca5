package tui

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arborhq/arbor/pkg/domain"
)

// PlanMarkdown formats a plan result as markdown for terminal rendering:
// the step table, the decision path in root-to-leaf order, and the
// projected state as a YAML block.
func PlanMarkdown(res *domain.PlanResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Plan (%d steps)\n\n", len(res.Plan))
	if len(res.Plan) == 0 {
		sb.WriteString("_empty plan_\n")
	} else {
		sb.WriteString("| # | Unit | Params |\n")
		sb.WriteString("|---|------|--------|\n")
		for i, step := range res.Plan {
			fmt.Fprintf(&sb, "| %d | %s | %s |\n", i+1, step.Unit, paramsCell(step.Params))
		}
	}

	if len(res.MTR) > 0 {
		sb.WriteString("\n## Decisions\n\n")
		for i, c := range res.MTR.Reversed() {
			fmt.Fprintf(&sb, "%d. %s → %s (priority %d)\n", i+1, c.Task, c.Method, c.Priority)
		}
	}

	if len(res.State) > 0 {
		sb.WriteString("\n## Projected state\n\n```yaml\n")
		if out, err := yaml.Marshal(map[string]any(res.State)); err == nil {
			sb.Write(out)
		}
		sb.WriteString("```\n")
	}

	return sb.String()
}

func paramsCell(params map[string]any) string {
	if len(params) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, params[k])
	}
	return strings.Join(parts, ", ")
}
