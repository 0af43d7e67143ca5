package domain

import (
	"context"
	"time"
)

// EventType defines the category of a planning event.
type EventType string

const (
	EventTaskEnter   EventType = "task_enter"
	EventMethodTried EventType = "method_tried"
	EventPlanDone    EventType = "plan_done"
)

// Method attempt outcomes reported through MethodEvent.
const (
	OutcomeChosen           = "chosen"
	OutcomeConditionsFailed = "conditions_failed"
	OutcomePruned           = "pruned"
	OutcomeSubtasksFailed   = "subtasks_failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// TaskEvent reports the decomposer entering a task.
type TaskEvent struct {
	EventBase
	Task     string `json:"task"`
	TaskType string `json:"task_type"`
	Depth    int    `json:"depth"`
}

// MethodEvent reports the outcome of one method attempt.
type MethodEvent struct {
	EventBase
	Task     string `json:"task"`
	Method   string `json:"method"`
	Priority int    `json:"priority"`
	Outcome  string `json:"outcome"`
}

// PlanEvent reports a finished planning call.
type PlanEvent struct {
	EventBase
	Roots    []string      `json:"roots"`
	Success  bool          `json:"success"`
	Steps    int           `json:"steps"`
	Duration time.Duration `json:"duration"`
}

// Hooks defines callbacks for planner observability. Multiple hook sets may
// be registered on an engine; they fire in registration order. Hooks must not
// block: the planner invokes them synchronously during decomposition.
type Hooks struct {
	OnTaskEnter   func(context.Context, *TaskEvent)
	OnMethodTried func(context.Context, *MethodEvent)
	OnPlanDone    func(context.Context, *PlanEvent)
}
