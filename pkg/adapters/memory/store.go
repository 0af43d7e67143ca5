// Package memory provides in-process implementations of the ports: a plan
// store backed by a map and a domain source backed by a built domain. Both
// are safe for concurrent use and are the default backends for embedded
// setups and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
)

// Store implements ports.PlanStore in memory.
type Store struct {
	mu   sync.RWMutex
	data map[string]*ports.PlanRecord
}

// NewStore creates an empty in-memory plan store.
func NewStore() *Store {
	return &Store{data: make(map[string]*ports.PlanRecord)}
}

// Save persists the record. The stored copy is isolated from the caller's.
func (s *Store) Save(ctx context.Context, rec *ports.PlanRecord) error {
	clone := rec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[clone.ID] = clone
	return nil
}

// Load retrieves the record. The returned copy is isolated from the store.
func (s *Store) Load(ctx context.Context, id string) (*ports.PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return rec.Clone(), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return domain.ErrPlanNotFound
	}
	delete(s.data, id)
	return nil
}

// List returns the stored record IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
