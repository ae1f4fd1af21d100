package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/shared"
)

// DefaultRetryWindow is how long Obtain keeps retrying a held key
const DefaultRetryWindow = 5 * time.Second

// RedisLocker hands out redislock leases shared by every service instance
type RedisLocker struct {
	client      *redislock.Client
	namespace   string
	retryWindow time.Duration
}

// NewRedisLocker creates a locker whose keys live under namespace
func NewRedisLocker(client redis.UniversalClient, namespace string, retryWindow time.Duration) *RedisLocker {
	if namespace == "" {
		namespace = "sitestock:lock:"
	}
	if retryWindow <= 0 {
		retryWindow = DefaultRetryWindow
	}
	return &RedisLocker{
		client:      redislock.New(client),
		namespace:   namespace,
		retryWindow: retryWindow,
	}
}

// Obtain acquires key for ttl, retrying with exponential backoff until the
// retry window or ctx runs out
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (appshared.Lock, error) {
	ctx, cancel := context.WithTimeout(ctx, l.retryWindow)
	defer cancel()

	lock, err := l.client.Obtain(ctx, l.namespace+key, ttl, &redislock.Options{
		RetryStrategy: redislock.ExponentialBackoff(20*time.Millisecond, 500*time.Millisecond),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("%s is being changed by another request, retry shortly", key))
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return &redisLease{lock: lock}, nil
}

type redisLease struct {
	lock *redislock.Lock
}

// Release frees the lease. A lease that already expired is not an error.
func (r *redisLease) Release(ctx context.Context) error {
	err := r.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}

var _ appshared.Locker = (*RedisLocker)(nil)
