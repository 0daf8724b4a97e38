package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "blacklist:"

// RedisBlacklist stores revoked refresh token IDs in Redis with a TTL, so
// revocations survive restarts and are shared across instances.
type RedisBlacklist struct {
	rdb *redis.Client
}

func NewRedisBlacklist(rdb *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{rdb: rdb}
}

func (b *RedisBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	return b.rdb.Set(ctx, blacklistKeyPrefix+jti, "1", ttl).Err()
}

func (b *RedisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ Blacklist = (*RedisBlacklist)(nil)
