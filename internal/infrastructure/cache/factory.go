package cache

import (
	"context"
	"time"

	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is the dashboard cache contract shared by both backends
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Locker is the run lock contract shared by both backends
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (UnlockFunc, bool, error)
}

// Backend bundles the dashboard cache and the run lock. Both live in redis when it
// is enabled and reachable and in process memory otherwise.
type Backend struct {
	Store  Store
	Locker Locker
	client *redis.Client
}

// NewBackend connects to redis when enabled and falls back to memory when it is
// disabled or unreachable.
func NewBackend(cfg config.RedisConfig, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Enabled {
		client, err := NewRedisClient(cfg)
		if err == nil {
			logger.Info("using Redis cache", zap.String("addr", cfg.Addr()))
			return NewRedisBackend(client)
		}
		logger.Warn("Redis unavailable, falling back to in-memory cache. "+
			"Courier sync runs are then only serialized within this process.",
			zap.Error(err),
		)
	}
	return NewInMemoryBackend()
}

// NewRedisBackend creates a backend on an existing client
func NewRedisBackend(client *redis.Client) *Backend {
	return &Backend{
		Store:  NewRedisDashboardCache(client, ""),
		Locker: NewRedisRunLock(client, ""),
		client: client,
	}
}

// NewInMemoryBackend creates a process-local backend
func NewInMemoryBackend() *Backend {
	return &Backend{
		Store:  NewInMemoryDashboardCache(),
		Locker: NewInMemoryRunLock(),
	}
}

// UsesRedis reports whether the backend is redis-backed
func (b *Backend) UsesRedis() bool {
	return b.client != nil
}

// Ping checks redis connectivity; the in-memory backend is always healthy
func (b *Backend) Ping(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	return b.client.Ping(ctx).Err()
}

// Close closes the redis client
func (b *Backend) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}
