// Package testutils holds helpers shared by adapter and integration tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo initializes a loam repository in a fresh temp directory and
// returns the directory path with the repository. Extra options are applied
// on top of the defaults; pass loam.WithStrict(true) to match how the
// loader opens repositories in production.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "resolving temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "initializing loam repo")

	return absPath, repo
}

// WriteRepoFiles writes raw files into a repository directory. Keys are
// filenames, values full file contents including frontmatter.
func WriteRepoFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
		require.NoError(t, err, "writing %s", name)
	}
}
