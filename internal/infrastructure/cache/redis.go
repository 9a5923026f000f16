package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to redis and verifies the connection with a ping
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
