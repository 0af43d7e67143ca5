package middleware_test

import (
	"context"

	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]*ports.PlanRecord
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*ports.PlanRecord),
	}
}

func (s *MockStore) Save(ctx context.Context, rec *ports.PlanRecord) error {
	s.data[rec.ID] = rec
	return nil
}

func (s *MockStore) Load(ctx context.Context, id string) (*ports.PlanRecord, error) {
	rec, ok := s.data[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return rec, nil
}

func (s *MockStore) Delete(ctx context.Context, id string) error {
	delete(s.data, id)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.PlanStore = (*MockStore)(nil)
