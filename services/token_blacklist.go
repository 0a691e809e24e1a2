package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist remembers tokens revoked at logout until they would have expired
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewTokenBlacklist returns a Redis-backed blacklist, or a no-op one when client is nil
func NewTokenBlacklist(client *redis.Client) TokenBlacklist {
	if client == nil {
		return NoopTokenBlacklist{}
	}
	return &RedisTokenBlacklist{client: client, prefix: "revoked:"}
}

// RedisTokenBlacklist stores one key per revoked token id with a TTL matching the token's expiry
type RedisTokenBlacklist struct {
	client *redis.Client
	prefix string
}

func (b *RedisTokenBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.prefix+tokenID, 1, ttl).Err()
}

func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := b.client.Exists(ctx, b.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NoopTokenBlacklist is used when Redis is not configured; logout then only clears the cookie
type NoopTokenBlacklist struct{}

func (NoopTokenBlacklist) Revoke(context.Context, string, time.Time) error { return nil }

func (NoopTokenBlacklist) IsRevoked(context.Context, string) (bool, error) { return false, nil }
