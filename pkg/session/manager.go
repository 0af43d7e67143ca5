package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arborhq/arbor/internal/logging"
	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
)

// defaultLockTTL bounds how long a crashed holder can wedge a record when a
// distributed locker is in play.
const defaultLockTTL = 30 * time.Second

// lockEntry is a per-ID mutex plus the number of goroutines currently
// holding or waiting on it. The entry is removed from the table when refs
// drops to zero.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes operations on plan records by ID. In-process callers
// are ordered by a per-ID mutex; when a DistributedLocker is configured,
// the critical section additionally holds a lease so that other processes
// sharing the store are excluded too.
type Manager struct {
	store ports.PlanStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLocker adds a distributed lock around every critical section. Use it
// when multiple processes share one plan store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) { m.locker = locker }
}

// WithLockTTL sets the lease duration requested from the distributed
// locker. It has no effect without WithLocker.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.lockTTL = ttl }
}

// WithLogger sets the logger used for lock release failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// New returns a Manager over the given store.
func New(store ports.PlanStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: defaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire returns the lock entry for id, creating it on first use.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release drops one reference to the entry for id and removes it from the
// table once nobody holds or waits on it.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock runs fn while holding the critical section for id. The
// in-process mutex is taken first, then the distributed lease when a
// locker is configured; both are released when fn returns.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	entry := m.acquire(id)
	defer m.release(id)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("acquiring distributed lock for %q: %w", id, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock", "plan_id", id, "error", err)
			}
		}()
	}

	return fn(ctx)
}

// Load returns the record with the given ID.
func (m *Manager) Load(ctx context.Context, id string) (*ports.PlanRecord, error) {
	var rec *ports.PlanRecord
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		rec, err = m.store.Load(ctx, id)
		return err
	})
	return rec, err
}

// LoadOrCreate returns the record with the given ID, creating and
// persisting an empty one for domainName when none exists yet. Persisting
// immediately reserves the ID, so concurrent callers converge on a single
// record.
func (m *Manager) LoadOrCreate(ctx context.Context, id, domainName string) (*ports.PlanRecord, error) {
	var rec *ports.PlanRecord
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		rec, err = m.store.Load(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrPlanNotFound) {
			return err
		}
		rec = &ports.PlanRecord{ID: id, Domain: domainName}
		touch(rec)
		return m.store.Save(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Save persists the record, stamping UpdatedAt and, when unset, CreatedAt
// on the caller's copy.
func (m *Manager) Save(ctx context.Context, rec *ports.PlanRecord) error {
	return m.WithLock(ctx, rec.ID, func(ctx context.Context) error {
		touch(rec)
		return m.store.Save(ctx, rec)
	})
}

// Update runs a read-modify-write cycle on the record with the given ID.
// fn receives the stored record, or nil when none exists, and returns the
// record to persist; returning nil keeps the store untouched. The whole
// cycle runs under the ID's critical section, so concurrent updates never
// lose writes.
func (m *Manager) Update(ctx context.Context, id string, fn func(ctx context.Context, rec *ports.PlanRecord) (*ports.PlanRecord, error)) (*ports.PlanRecord, error) {
	var out *ports.PlanRecord
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		old, err := m.store.Load(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrPlanNotFound) {
			return err
		}
		next, err := fn(ctx, old)
		if err != nil {
			return err
		}
		if next == nil {
			out = old
			return nil
		}
		if old != nil && next.CreatedAt.IsZero() {
			next.CreatedAt = old.CreatedAt
		}
		touch(next)
		if err := m.store.Save(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the record with the given ID.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List returns the IDs of all stored records.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store exposes the underlying plan store. Callers using it directly are
// responsible for their own locking.
func (m *Manager) Store() ports.PlanStore {
	return m.store
}

// touch stamps the write-time bookkeeping fields.
func touch(rec *ports.PlanRecord) {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
}
