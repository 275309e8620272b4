package repo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "auth:blacklist:"

// BlacklistRedis stores revoked tokens until their natural expiry, so a
// logged-out token cannot be replayed. It satisfies auth.Revocations.
type BlacklistRedis struct{ C *redis.Client }

func NewBlacklist(addr string) *BlacklistRedis {
	return &BlacklistRedis{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (b *BlacklistRedis) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.C.Set(ctx, blacklistPrefix+token, "1", ttl).Err()
}

func (b *BlacklistRedis) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := b.C.Get(ctx, blacklistPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *BlacklistRedis) Close() error { return b.C.Close() }
