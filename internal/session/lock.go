package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrBusy is returned when a session lock could not be taken in time.
var ErrBusy = errors.New("session is busy")

// Locker grants exclusive access to one session at a time. The returned func
// releases the lock.
type Locker interface {
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

// KeyedMutex is an in-process Locker. Entries are dropped once nobody holds or waits
// for them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*lockEntry)}
}

func (k *KeyedMutex) Lock(_ context.Context, id string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[id]
	if !ok {
		e = &lockEntry{}
		k.locks[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}, nil
}

const (
	redisLockPrefix     = "scoreboard:lock:"
	redisLockRetryDelay = 20 * time.Millisecond
)

// releases the lock only while it still belongs to the caller
var redisUnlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes work on a session across service replicas. The lock expires
// after ttl so a crashed holder cannot block a session forever; waiting for a held
// lock gives up after wait with ErrBusy.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, wait: wait}
}

func (l *RedisLocker) Lock(ctx context.Context, id string) (func(), error) {
	key := redisLockPrefix + id
	owner := NewToken()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock session %s: %w", id, err)
		}
		if ok {
			return func() {
				// the request context may already be done; the lock must still go
				_ = redisUnlockScript.Run(context.WithoutCancel(ctx), l.client, []string{key}, owner).Err()
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrBusy
		}

		timer := time.NewTimer(redisLockRetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

var (
	_ Locker = (*KeyedMutex)(nil)
	_ Locker = (*RedisLocker)(nil)
)
