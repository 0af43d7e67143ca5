package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines cross-instance concurrency control. The session
// manager acquires a lock per session ID so replicas never interleave
// replanning of the same session.
type DistributedLocker interface {
	// Lock acquires the lock for key, blocking until acquired or ctx is
	// done. The ttl bounds how long a crashed holder can block others.
	// The returned UnlockFunc must be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
