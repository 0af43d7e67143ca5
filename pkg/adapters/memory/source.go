package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/arborhq/arbor/pkg/domain"
)

// Source implements ports.DomainSource over an already built domain. Swap
// replaces the domain and signals watchers, which makes the source usable
// wherever a file-backed source would be hot reloaded.
type Source struct {
	mu      sync.RWMutex
	current *domain.Domain
	watches []chan struct{}
}

// NewSource creates a source serving the given domain.
func NewSource(d *domain.Domain) *Source {
	return &Source{current: d}
}

// Load returns the current domain.
func (s *Source) Load(ctx context.Context) (*domain.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, errors.New("memory source holds no domain")
	}
	return s.current, nil
}

// Swap replaces the served domain and signals every watcher. Watchers that
// are not draining their channel miss coalesced signals, never Swap itself.
func (s *Source) Swap(d *domain.Domain) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = d
	for _, ch := range s.watches {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watch returns a channel signaled on every Swap. The channel closes when
// ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.watches = append(s.watches, ch)
	s.mu.Unlock()

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				s.drop(ch)
				return
			case <-ch:
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

func (s *Source) drop(ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.watches {
		if c == ch {
			s.watches = append(s.watches[:i], s.watches[i+1:]...)
			return
		}
	}
}
