package redis

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/redis/go-redis/v9"
)

// releaseLockScript deletes the lock only when it is still held by the given owner.
var releaseLockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// AcquireRefreshLock tries to take the per-agent refresh lock.
// Returns false when another run already holds it.
func (db *DB) AcquireRefreshLock(ctx context.Context, agentID, owner string, ttl time.Duration) (bool, error) {
	key := KeyPrefixRefreshLock + agentID
	ok, err := db.rdb.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "setnx refresh lock")
	}

	return ok, nil
}

// RefreshLockOwner reports who currently holds the agent's refresh lock.
// An empty owner means the lock is free.
func (db *DB) RefreshLockOwner(ctx context.Context, agentID string) (string, error) {
	owner, err := db.db.GetItem(ctx, KeyPrefixRefreshLock+agentID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errors.Wrap(err, "get refresh lock owner")
	}

	return owner, nil
}

// ReleaseRefreshLock releases the per-agent refresh lock if owned by owner.
func (db *DB) ReleaseRefreshLock(ctx context.Context, agentID, owner string) error {
	key := KeyPrefixRefreshLock + agentID
	if err := db.rdb.Eval(ctx, releaseLockScript, []string{key}, owner).Err(); err != nil {
		return errors.Wrap(err, "release refresh lock")
	}

	return nil
}
