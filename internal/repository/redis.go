package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tourbill/internal/config"
)

// RedisLockRepository holds export locks in Redis so concurrent API
// instances do not render the same booking's invoice twice.
type RedisLockRepository struct {
	client *redis.Client
}

// NewRedisClient builds a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisLockRepository(client *redis.Client) *RedisLockRepository {
	return &RedisLockRepository{client: client}
}

func (r *RedisLockRepository) TryAcquire(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	ok, err := r.client.SetNX(ctx, lockKey(bookingID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire export lock: %w", err)
	}
	return ok, nil
}

func (r *RedisLockRepository) Release(ctx context.Context, bookingID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, lockKey(bookingID)).Err(); err != nil {
		return fmt.Errorf("failed to release export lock: %w", err)
	}
	return nil
}

func lockKey(bookingID int64) string {
	return fmt.Sprintf("export_lock:%d", bookingID)
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close shuts down the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
