package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
	"github.com/arborhq/arbor/pkg/ports/tests"
)

func TestStore_Contract(t *testing.T) {
	tests.RunPlanStoreContract(t, New(t.TempDir()))
}

func TestStore_DefaultBasePath(t *testing.T) {
	s := New("")
	assert.Equal(t, filepath.Join(".arbor", "plans"), s.BasePath)
}

func TestStore_RejectsPathSeparators(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	err := s.Save(ctx, &ports.PlanRecord{ID: "../escape"})
	require.Error(t, err)

	_, err = s.Load(ctx, `a\b`)
	require.Error(t, err)
}

func TestStore_SaveWritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ctx := context.Background()

	rec := &ports.PlanRecord{
		ID:   "readable",
		Plan: domain.Plan{{Unit: "workflow.p"}},
		MTR:  domain.MTR{{Task: "root", Method: "m", Priority: 1}},
	}
	require.NoError(t, s.Save(ctx, rec))

	data, err := os.ReadFile(filepath.Join(dir, "readable.json"))
	require.NoError(t, err)

	var decoded ports.PlanRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rec.Plan, decoded.Plan)
	assert.Equal(t, rec.MTR, decoded.MTR)
}

func TestStore_ListSkipsStrayFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &ports.PlanRecord{ID: "keep"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-keep-123.json"), []byte("{}"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, ids)
}

func TestStore_CorruptFileSurfacesError(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))

	_, err := s.Load(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrPlanNotFound)
}
