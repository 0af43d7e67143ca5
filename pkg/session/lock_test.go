package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
)

// nopStore satisfies ports.PlanStore without keeping anything; these tests
// only watch the lock table.
type nopStore struct{}

func (nopStore) Save(ctx context.Context, rec *ports.PlanRecord) error { return nil }
func (nopStore) Load(ctx context.Context, id string) (*ports.PlanRecord, error) {
	return nil, domain.ErrPlanNotFound
}
func (nopStore) Delete(ctx context.Context, id string) error  { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)  { return nil, nil }

func TestManager_LockTableDrainsAfterUse(t *testing.T) {
	ctx := context.Background()
	mgr := New(nopStore{})

	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("plan-%d", i%50)
		if err := mgr.Save(ctx, &ports.PlanRecord{ID: id}); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := mgr.Delete(ctx, id); err != nil {
			t.Fatalf("delete: %v", err)
		}
	}

	mgr.mu.Lock()
	leaked := len(mgr.locks)
	mgr.mu.Unlock()
	if leaked != 0 {
		t.Errorf("lock table leaked %d entries after all holders released", leaked)
	}
}

func TestManager_LockTableDrainsUnderContention(t *testing.T) {
	ctx := context.Background()
	mgr := New(nopStore{})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("plan-%d", i%10)
			err := mgr.WithLock(ctx, id, func(ctx context.Context) error { return nil })
			if err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	mgr.mu.Lock()
	leaked := len(mgr.locks)
	mgr.mu.Unlock()
	if leaked != 0 {
		t.Errorf("lock table leaked %d entries after contention", leaked)
	}
}
