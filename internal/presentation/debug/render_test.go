package debug_test

import (
	"strings"
	"testing"

	"github.com/arborhq/arbor/internal/presentation/debug"
	"github.com/arborhq/arbor/pkg/domain"
)

func TestRender_TreeShape(t *testing.T) {
	trace := []*domain.DebugNode{
		{
			Task:    "deliver",
			Type:    domain.TaskCompound,
			Success: true,
			Attempts: []domain.MethodAttempt{
				{Method: "by_air", Priority: 10, Conditions: []bool{false}},
				{Method: "by_sea", Priority: 50, Pruned: true},
				{
					Method:   "by_road",
					Priority: 100,
					Success:  true,
					Subtree: []*domain.DebugNode{
						{Task: "load", Type: domain.TaskPrimitive, Success: true, Conditions: []bool{true}},
						{Task: "drive", Type: domain.TaskPrimitive, Success: true},
					},
				},
			},
		},
	}

	got := debug.Render(trace)
	for _, want := range []string{
		"✓ deliver (compound)",
		"  ✗ by_air (priority 10) conditions ✗",
		"  ⊘ by_sea (priority 50)",
		"  ✓ by_road (priority 100)",
		"    ✓ load (primitive) conditions ✓",
		"    ✓ drive (primitive)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestRender_ConditionEvaluationOrder(t *testing.T) {
	// Stored most recent first: the failing second condition sits at index 0.
	trace := []*domain.DebugNode{
		{Task: "load", Type: domain.TaskPrimitive, Conditions: []bool{false, true}},
	}

	got := debug.Render(trace)
	if !strings.Contains(got, "conditions ✓✗") {
		t.Errorf("expected evaluation order ✓✗ in:\n%s", got)
	}
}
