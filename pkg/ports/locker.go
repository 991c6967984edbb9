package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises turns on one session across host replicas.
type DistributedLocker interface {
	// Lock blocks until the lock for key (a session ID) is held or ctx is done.
	// The lock expires after ttl if the holder never releases it.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
