package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// UnlockFunc releases a lock taken by TryLock
type UnlockFunc func(ctx context.Context) error

// releaseScript deletes the lock only while it still holds our token, so a run that
// outlived its TTL cannot release a lock taken by the next run.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRunLock is a distributed mutex built on SET NX with a TTL
type RedisRunLock struct {
	client *redis.Client
	prefix string
}

// NewRedisRunLock creates a lock on an existing client
func NewRedisRunLock(client *redis.Client, prefix string) *RedisRunLock {
	if prefix == "" {
		prefix = DefaultDashboardPrefix
	}
	return &RedisRunLock{client: client, prefix: prefix + "lock:"}
}

// TryLock takes the named lock for at most ttl. It reports false without error when
// another holder has it.
func (l *RedisRunLock) TryLock(ctx context.Context, name string, ttl time.Duration) (UnlockFunc, bool, error) {
	key := l.prefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", name, err)
		}
		return nil
	}, true, nil
}

// InMemoryRunLock provides the same contract within a single process
type InMemoryRunLock struct {
	store *ttlStore[string]
}

// NewInMemoryRunLock creates a new InMemoryRunLock
func NewInMemoryRunLock() *InMemoryRunLock {
	return &InMemoryRunLock{store: newTTLStore[string]()}
}

// TryLock takes the named lock for at most ttl
func (l *InMemoryRunLock) TryLock(_ context.Context, name string, ttl time.Duration) (UnlockFunc, bool, error) {
	token := uuid.NewString()
	if !l.store.setIfAbsent(name, token, ttl) {
		return nil, false, nil
	}
	return func(context.Context) error {
		l.store.deleteIf(name, func(v string) bool { return v == token })
		return nil
	}, true, nil
}
