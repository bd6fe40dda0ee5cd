package service

import (
	"context"
	"sync"
	"time"

	gutils "github.com/Laisky/go-utils/v6"

	redisdb "github.com/Laisky/kb-refresh/library/db/redis"
)

// RunLock serializes refresh runs per agent. Two refreshes interleaving their
// clearing and uploading phases would corrupt the knowledge base, so a second
// trigger while one run is live must be rejected up front.
type RunLock interface {
	// TryAcquire returns false when another run already holds the agent's
	// lock; holder then identifies the current owner, best effort.
	TryAcquire(ctx context.Context, agentID string) (acquired bool, holder string, err error)
	Release(ctx context.Context, agentID string) error
}

// MemoryRunLock is the single-process lock implementation.
type MemoryRunLock struct {
	running sync.Map
}

// NewMemoryRunLock creates an in-process run lock.
func NewMemoryRunLock() *MemoryRunLock {
	return &MemoryRunLock{}
}

// TryAcquire atomically marks the agent as running.
func (l *MemoryRunLock) TryAcquire(_ context.Context, agentID string) (bool, string, error) {
	owner, loaded := l.running.LoadOrStore(agentID, gutils.UUID7())
	if loaded {
		return false, owner.(string), nil
	}

	return true, "", nil
}

// Release clears the agent's running mark.
func (l *MemoryRunLock) Release(_ context.Context, agentID string) error {
	l.running.Delete(agentID)
	return nil
}

// RedisRunLock coordinates runs across processes via SETNX with a TTL, so a
// crashed holder cannot wedge the agent forever.
type RedisRunLock struct {
	db    *redisdb.DB
	owner string
	ttl   time.Duration
}

// NewRedisRunLock creates a distributed run lock with the given TTL.
func NewRedisRunLock(db *redisdb.DB, ttl time.Duration) *RedisRunLock {
	return &RedisRunLock{
		db:    db,
		owner: gutils.UUID7(),
		ttl:   ttl,
	}
}

// TryAcquire takes the distributed lock for the agent. On contention the
// current holder is looked up so the caller can report who is running.
func (l *RedisRunLock) TryAcquire(ctx context.Context, agentID string) (bool, string, error) {
	acquired, err := l.db.AcquireRefreshLock(ctx, agentID, l.owner, l.ttl)
	if err != nil {
		return false, "", err
	}
	if acquired {
		return true, "", nil
	}

	holder, err := l.db.RefreshLockOwner(ctx, agentID)
	if err != nil {
		return false, "", err
	}

	return false, holder, nil
}

// Release frees the distributed lock if this process still owns it.
func (l *RedisRunLock) Release(ctx context.Context, agentID string) error {
	return l.db.ReleaseRefreshLock(ctx, agentID, l.owner)
}
