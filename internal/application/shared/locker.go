package shared

import (
	"context"
	"time"
)

// Lock is a held distributed lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker serializes work on one key across service instances
type Locker interface {
	// Obtain acquires the lock or fails with a CONCURRENCY_CONFLICT error
	// when another holder keeps it past the retry window
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// NoopLocker is used when no lock backend is configured; the database
// transaction and version checks still guard consistency.
type NoopLocker struct{}

type noopLock struct{}

func (noopLock) Release(context.Context) error { return nil }

// Obtain always succeeds
func (NoopLocker) Obtain(context.Context, string, time.Duration) (Lock, error) {
	return noopLock{}, nil
}

var _ Locker = NoopLocker{}
