package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhq/arbor"
	"github.com/arborhq/arbor/pkg/adapters/memory"
	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/dsl"
	"github.com/arborhq/arbor/pkg/replan"
	"github.com/arborhq/arbor/pkg/session"
)

func testRunner(t *testing.T, opts PlanOptions) *planRunner {
	t.Helper()

	b := dsl.New("delivery").
		Allow("load_cargo", "units/load").
		Allow("fly_drone", "units/fly").
		Allow("drive_truck", "units/drive").
		Roots("deliver")
	b.Primitive("load").Action("load_cargo", nil)
	b.Primitive("fly").Action("fly_drone", nil)
	b.Primitive("drive").Action("drive_truck", nil)
	c := b.Compound("deliver")
	c.Method("by_air").Priority(10).WhenExpr("fuel > 20").Tasks("load", "fly")
	c.Method("by_road").Priority(100).WhenExpr("fuel > 0").Tasks("load", "drive")

	d, err := b.Build()
	require.NoError(t, err)

	p, err := arbor.NewFromDomain(d)
	require.NoError(t, err)

	r := &planRunner{planner: p, opts: opts}
	if opts.SessionID != "" {
		r.sessions = session.New(memory.NewStore())
		r.driver = replan.New(r.sessions, p.PlanWithOptions, replan.WithDomainName(d.Name()))
	}
	return r
}

func TestPlanRunner_NoSessionPlansDirectly(t *testing.T) {
	r := testRunner(t, PlanOptions{})

	res, err := r.plan(context.Background(), domain.State{"fuel": 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"units/load", "units/drive"}, res.Plan.Units())
}

func TestPlanRunner_SessionKeepsBestPlan(t *testing.T) {
	r := testRunner(t, PlanOptions{SessionID: "mission-1"})
	ctx := context.Background()

	res, err := r.plan(ctx, domain.State{"fuel": 50})
	require.NoError(t, err)
	assert.Equal(t, "by_air", res.MTR[0].Method)

	// A worse world cannot beat the stored plan: the culled search fails
	// and the record survives.
	_, err = r.plan(ctx, domain.State{"fuel": 5})
	var dec *domain.DecompositionError
	require.ErrorAs(t, err, &dec)

	rec, err := r.sessions.Load(ctx, "mission-1")
	require.NoError(t, err)
	assert.Equal(t, "by_air", rec.MTR[0].Method)
}

func TestPlanRunner_FreshResetsSession(t *testing.T) {
	r := testRunner(t, PlanOptions{SessionID: "mission-2", Fresh: true})
	ctx := context.Background()

	_, err := r.plan(ctx, domain.State{"fuel": 50})
	require.NoError(t, err)

	require.NoError(t, r.reset(ctx))
	_, err = r.sessions.Load(ctx, "mission-2")
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)

	// With the reference gone the road plan is reachable again.
	res, err := r.plan(ctx, domain.State{"fuel": 5})
	require.NoError(t, err)
	assert.Equal(t, "by_road", res.MTR[0].Method)
}
