// Package runlock provides a Redis-backed distributed lock guarding
// concurrent planning runs: only one worker may hold the lock and run
// the scheduler at a time, even when several worker processes are
// deployed.
package runlock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lock is a single-writer lock held in Redis via SET NX with a TTL.
type Lock struct {
	rdb   *redis.Client
	key   string
	ttl   time.Duration
	token string
}

// New creates a Lock bound to key with the given TTL. The lock is not
// acquired until Acquire is called.
func New(rdb *redis.Client, key string, ttl time.Duration) *Lock {
	return &Lock{rdb: rdb, key: key, ttl: ttl}
}

// Acquire attempts to take the lock, returning false if another holder
// already has it. Acquire is safe to call repeatedly; each successful
// call mints a fresh token used to verify ownership on Release.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.New().String()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquiring run lock: %w", err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// releaseScript is the Lua script releasing the lock only if the caller's
// token still matches the stored one, so a holder never releases a lock
// acquired by someone else after its own TTL expired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// Release gives up the lock if this Lock instance still owns it.
func (l *Lock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("releasing run lock: %w", err)
	}
	l.token = ""
	return nil
}
