// Package metrics exposes planner activity as Prometheus collectors, fed
// through the planner's hook set.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arborhq/arbor/pkg/domain"
)

// Collectors holds the planning metrics. Method attempts are labeled by
// outcome, so prunes and backtracks are separate series of one vector.
type Collectors struct {
	Plans          *prometheus.CounterVec
	PlanDuration   prometheus.Histogram
	TaskVisits     *prometheus.CounterVec
	MethodAttempts *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor",
			Subsystem: "planner",
			Name:      "plans_total",
			Help:      "Finished planning calls by result.",
		}, []string{"result"}),
		PlanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arbor",
			Subsystem: "planner",
			Name:      "plan_duration_seconds",
			Help:      "Wall-clock duration of planning calls.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 10, 6),
		}),
		TaskVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor",
			Subsystem: "planner",
			Name:      "task_visits_total",
			Help:      "Tasks entered during decomposition, by task type.",
		}, []string{"task_type"}),
		MethodAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor",
			Subsystem: "planner",
			Name:      "method_attempts_total",
			Help:      "Method attempts by outcome (chosen, conditions_failed, pruned, subtasks_failed).",
		}, []string{"outcome"}),
	}

	for _, col := range []prometheus.Collector{c.Plans, c.PlanDuration, c.TaskVisits, c.MethodAttempts} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns the hook set feeding the collectors.
func (c *Collectors) Hooks() domain.Hooks {
	return domain.Hooks{
		OnTaskEnter: func(ctx context.Context, e *domain.TaskEvent) {
			c.TaskVisits.WithLabelValues(e.TaskType).Inc()
		},
		OnMethodTried: func(ctx context.Context, e *domain.MethodEvent) {
			c.MethodAttempts.WithLabelValues(e.Outcome).Inc()
		},
		OnPlanDone: func(ctx context.Context, e *domain.PlanEvent) {
			result := "failure"
			if e.Success {
				result = "success"
			}
			c.Plans.WithLabelValues(result).Inc()
			c.PlanDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Hooks registers planning collectors on reg and returns the hook set in
// one call, for wiring straight into the facade.
func Hooks(reg prometheus.Registerer) (domain.Hooks, error) {
	c, err := New(reg)
	if err != nil {
		return domain.Hooks{}, err
	}
	return c.Hooks(), nil
}
