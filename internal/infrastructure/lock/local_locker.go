package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/shared"
)

// LocalLocker serializes work on a key inside one process. Leases expire
// after their ttl so a caller that never releases cannot wedge a key.
type LocalLocker struct {
	mu          sync.Mutex
	held        map[string]localLease
	retryWindow time.Duration
	retryEvery  time.Duration
	seq         uint64
}

type localLease struct {
	token     uint64
	expiresAt time.Time
}

// NewLocalLocker creates a process-local locker
func NewLocalLocker(retryWindow time.Duration) *LocalLocker {
	if retryWindow <= 0 {
		retryWindow = DefaultRetryWindow
	}
	return &LocalLocker{
		held:        make(map[string]localLease),
		retryWindow: retryWindow,
		retryEvery:  10 * time.Millisecond,
	}
}

// Obtain acquires key, polling until the retry window or ctx runs out
func (l *LocalLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (appshared.Lock, error) {
	deadline := time.NewTimer(l.retryWindow)
	defer deadline.Stop()
	ticker := time.NewTicker(l.retryEvery)
	defer ticker.Stop()

	for {
		if token, ok := l.tryObtain(key, ttl); ok {
			return &localRelease{locker: l, key: key, token: token}, nil
		}
		select {
		case <-ticker.C:
		case <-deadline.C:
			return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
				fmt.Sprintf("%s is being changed by another request, retry shortly", key))
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *LocalLocker) tryObtain(key string, ttl time.Duration) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if lease, ok := l.held[key]; ok && now.Before(lease.expiresAt) {
		return 0, false
	}
	l.seq++
	l.held[key] = localLease{token: l.seq, expiresAt: now.Add(ttl)}
	return l.seq, true
}

func (l *LocalLocker) release(key string, token uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// A lease that expired and was taken over belongs to the new holder.
	if lease, ok := l.held[key]; ok && lease.token == token {
		delete(l.held, key)
	}
}

type localRelease struct {
	locker *LocalLocker
	key    string
	token  uint64
	once   sync.Once
}

func (r *localRelease) Release(context.Context) error {
	r.once.Do(func() { r.locker.release(r.key, r.token) })
	return nil
}

var _ appshared.Locker = (*LocalLocker)(nil)
