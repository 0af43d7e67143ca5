// Package tests provides reusable contract suites for ports implementations.
// Adapter packages run the suite matching each port they implement.
package tests

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
)

// RunPlanStoreContract verifies that a PlanStore implementation adheres to
// the interface contract. The store should start empty; the suite leaves
// records behind.
func RunPlanStoreContract(t *testing.T, store ports.PlanStore) {
	t.Helper()
	ctx := context.Background()

	record := func(id string) *ports.PlanRecord {
		return &ports.PlanRecord{
			ID:     id,
			Domain: "delivery",
			Plan: domain.Plan{
				{Unit: "workflow.load.v1", Params: map[string]any{"bay": "b3"}},
				{Unit: "workflow.fly.v1"},
			},
			MTR: domain.MTR{
				{Task: "deliver", Method: "by_air", Priority: 10},
			},
			State:     domain.State{"cargo": "loaded"},
			CreatedAt: time.Now().UTC().Truncate(time.Second),
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("SaveAndLoad", func(t *testing.T) {
		rec := record("contract-roundtrip")
		require.NoError(t, store.Save(ctx, rec))

		loaded, err := store.Load(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, loaded.ID)
		assert.Equal(t, rec.Domain, loaded.Domain)
		assert.Equal(t, rec.Plan, loaded.Plan)
		assert.Equal(t, rec.MTR, loaded.MTR)
		assert.Equal(t, "loaded", loaded.State["cargo"])
		assert.WithinDuration(t, rec.CreatedAt, loaded.CreatedAt, time.Second)
		assert.WithinDuration(t, rec.UpdatedAt, loaded.UpdatedAt, time.Second)
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		rec := record("contract-overwrite")
		require.NoError(t, store.Save(ctx, rec))

		rec.Plan = domain.Plan{{Unit: "workflow.drive.v1"}}
		rec.MTR = domain.MTR{{Task: "deliver", Method: "by_road", Priority: 20}}
		require.NoError(t, store.Save(ctx, rec))

		loaded, err := store.Load(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"workflow.drive.v1"}, loaded.Plan.Units())
		assert.Equal(t, "by_road", loaded.MTR[0].Method)
	})

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := store.Load(ctx, "contract-absent")
		assert.ErrorIs(t, err, domain.ErrPlanNotFound)
	})

	t.Run("DeleteRemoves", func(t *testing.T) {
		rec := record("contract-delete")
		require.NoError(t, store.Save(ctx, rec))
		require.NoError(t, store.Delete(ctx, rec.ID))

		_, err := store.Load(ctx, rec.ID)
		assert.ErrorIs(t, err, domain.ErrPlanNotFound)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		err := store.Delete(ctx, "contract-absent")
		assert.ErrorIs(t, err, domain.ErrPlanNotFound)
	})

	t.Run("ListSorted", func(t *testing.T) {
		for _, id := range []string{"contract-list-b", "contract-list-a", "contract-list-c"} {
			require.NoError(t, store.Save(ctx, record(id)))
		}

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.True(t, sort.StringsAreSorted(ids), "ids not sorted: %v", ids)
		for _, id := range []string{"contract-list-a", "contract-list-b", "contract-list-c"} {
			assert.Contains(t, ids, id)
		}
	})

	t.Run("LoadedRecordsAreIsolated", func(t *testing.T) {
		rec := record("contract-isolation")
		require.NoError(t, store.Save(ctx, rec))

		first, err := store.Load(ctx, rec.ID)
		require.NoError(t, err)
		first.State["cargo"] = "tampered"
		first.Plan[0].Unit = "tampered"

		second, err := store.Load(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "loaded", second.State["cargo"])
		assert.Equal(t, "workflow.load.v1", second.Plan[0].Unit)
	})
}
