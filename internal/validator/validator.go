// Package validator checks a compiled domain for structural problems that
// construction alone does not reject: dangling subtask references,
// compound tasks that can never decompose, and tasks no root can reach.
package validator

import (
	"fmt"
	"strings"

	"github.com/arborhq/arbor/pkg/domain"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is a single finding about a task.
type Issue struct {
	Severity string `json:"severity"`
	Task     string `json:"task,omitempty"`
	Message  string `json:"message"`
}

// Report collects the findings for a domain. Warnings do not make a
// domain invalid; errors do.
type Report struct {
	Domain string  `json:"domain"`
	Issues []Issue `json:"issues,omitempty"`
}

// OK reports whether the domain carries no error-severity findings.
func (r *Report) OK() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Err folds the error-severity findings into a single error, nil when the
// domain is valid.
func (r *Report) Err() error {
	var msgs []string
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			msgs = append(msgs, issue.String())
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(msgs), strings.Join(msgs, "\n- "))
}

func (i Issue) String() string {
	if i.Task == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Task, i.Message)
}

// String renders the report for terminal output.
func (r *Report) String() string {
	if len(r.Issues) == 0 {
		return fmt.Sprintf("domain %q is valid\n", r.Domain)
	}
	var b strings.Builder
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "%s: %s\n", issue.Severity, issue.String())
	}
	return b.String()
}

func (r *Report) add(severity, task, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: severity,
		Task:     task,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Check crawls the task network from the domain's declared roots and
// reports every structural finding. Tasks are visited in name order so
// the report is deterministic.
func Check(d *domain.Domain) *Report {
	r := &Report{Domain: d.Name()}

	roots := d.DefaultRoots()
	if len(roots) == 0 {
		r.add(SeverityWarning, "", "no root tasks declared; callers must name roots on every plan call")
	}

	for _, name := range d.TaskNames() {
		task, _ := d.Task(name)
		if !task.IsCompound() {
			continue
		}
		if len(task.Methods) == 0 {
			r.add(SeverityError, name, "compound task has no methods")
		}
		for _, m := range task.Methods {
			for _, sub := range m.Subtasks {
				if _, ok := d.Task(sub); !ok {
					r.add(SeverityError, name, "method %q references unknown task %q", m.Name, sub)
				}
			}
		}
	}

	if len(roots) > 0 {
		reachable := crawl(d, roots)
		for _, name := range d.TaskNames() {
			if !reachable[name] {
				r.add(SeverityWarning, name, "not reachable from any root")
			}
		}
	}

	return r
}

// crawl walks method subtask references breadth-first from the given
// roots. Unknown references are skipped here; Check reports them at the
// method that holds them.
func crawl(d *domain.Domain, roots []string) map[string]bool {
	visited := make(map[string]bool)
	queue := append([]string(nil), roots...)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		task, ok := d.Task(current)
		if !ok {
			continue
		}
		for _, m := range task.Methods {
			for _, sub := range m.Subtasks {
				if !visited[sub] {
					queue = append(queue, sub)
				}
			}
		}
	}
	return visited
}
