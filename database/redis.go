package database

import (
	"context"
	"fmt"
	"time"

	"github.com/bugtracker-api/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis when REDIS_ADDR is configured.
// It returns a nil client when Redis is disabled.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}
