package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "auth:revoked:"

// Open parses a redis:// URL and returns a client. An empty URL yields a nil client;
// callers treat Redis as optional.
func Open(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// TokenDenylist records revoked JWT ids until their natural expiry.
type TokenDenylist struct {
	Rdb *redis.Client
}

// Revoke marks jti as revoked for ttl. A non-positive ttl is a no-op (token already expired).
func (d *TokenDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if d == nil || d.Rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return d.Rdb.Set(ctx, revokedTokenPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked. Without Redis nothing is ever revoked.
func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if d == nil || d.Rdb == nil || jti == "" {
		return false, nil
	}
	n, err := d.Rdb.Exists(ctx, revokedTokenPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
