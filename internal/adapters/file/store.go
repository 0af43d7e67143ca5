// Package file implements ports.PlanStore on the local filesystem, one JSON
// file per plan record. Writes are atomic: temp file, fsync, rename.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
)

// Store persists plan records as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath. An empty basePath defaults to
// ".arbor/plans".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".arbor", "plans")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.BasePath, id+".json")
}

func checkID(id string) error {
	if id == "" {
		return fmt.Errorf("plan id cannot be empty")
	}
	// IDs become file names; separators would escape the base directory.
	if strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("plan id %q contains a path separator", id)
	}
	return nil
}

// Save writes the record atomically: the data lands in a temp file in the
// same directory (rename is only atomic within one filesystem), is fsynced,
// and then renamed over the destination.
func (s *Store) Save(ctx context.Context, rec *ports.PlanRecord) error {
	if err := checkID(rec.ID); err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure plan directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan record: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, "tmp-"+rec.ID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// No-ops after a successful rename.
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	dest := s.path(rec.ID)
	// Windows os.Rename also fails on an existing destination; the
	// remove-then-rename window is a partial-file risk we accept there.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to replace plan file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads and decodes the record file.
func (s *Store) Load(ctx context.Context, id string) (*ports.PlanRecord, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var rec ports.PlanRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan record: %w", err)
	}
	return &rec, nil
}

// Delete removes the record file.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrPlanNotFound
		}
		return fmt.Errorf("failed to delete plan file: %w", err)
	}
	return nil
}

// List returns the stored record IDs. os.ReadDir sorts by file name, which
// is the lexical order the port promises.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}
