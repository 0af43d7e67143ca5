package cli

import (
	"fmt"
	"os"
	"path/filepath"

	backend "github.com/redis/go-redis/v9"

	"github.com/arborhq/arbor/internal/adapters/file"
	redisstore "github.com/arborhq/arbor/internal/adapters/redis"
	"github.com/arborhq/arbor/pkg/ports"
)

// SessionDir returns the on-disk session directory for a domain repository.
func SessionDir(repoPath string) string {
	return filepath.Join(repoPath, ".arbor", "sessions")
}

// OpenStore returns the plan store backing sessions for a repository: Redis
// when redisURL (or the REDIS_URL environment variable) is set, the
// repository-local file store otherwise.
func OpenStore(repoPath, redisURL string) (ports.PlanStore, error) {
	if redisURL == "" {
		redisURL = os.Getenv("REDIS_URL")
	}
	if redisURL == "" {
		return file.New(SessionDir(repoPath)), nil
	}

	ropts, err := backend.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	return redisstore.NewFromClient(backend.NewClient(ropts)), nil
}
