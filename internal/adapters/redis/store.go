// Package redis implements ports.PlanStore on Redis: one JSON value per
// record plus a sorted-set index for listing, with optional expiry.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.PlanStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for plan records. Zero keeps records forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix for records.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "arbor:plan:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// indexScore is the sorted-set score of a record: its expiry time, so List
// can lazily prune. Records without TTL score far in the future.
func (s *Store) indexScore(now time.Time) float64 {
	if s.ttl == 0 {
		return 4102444800 // 2100-01-01
	}
	return float64(now.Add(s.ttl).Unix())
}

// Save persists the record and indexes its ID, pipelined.
func (s *Store) Save(ctx context.Context, rec *ports.PlanRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal plan record: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(rec.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  s.indexScore(time.Now()),
		Member: rec.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves and decodes the record.
func (s *Store) Load(ctx context.Context, id string) (*ports.PlanRecord, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rec ports.PlanRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan record: %w", err)
	}
	return &rec, nil
}

// Delete removes the record and its index entry, pipelined.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	del := pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

// List returns the stored record IDs in lexical order. Index entries whose
// expiry score has passed are pruned first, so IDs of records Redis already
// expired do not linger.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired plans: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	// ZRange orders by score first; with TTLs the scores differ.
	sort.Strings(ids)
	return ids, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
