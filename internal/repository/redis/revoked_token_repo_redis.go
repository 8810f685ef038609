package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// RevokedTokenRepository keeps the blacklist in Redis, relying on native key
// TTL instead of a background sweep: entries vanish exactly when the token
// would be rejected as expired anyway.
type RevokedTokenRepository struct {
	client redis.UniversalClient
}

func NewRevokedTokenRepo(client redis.UniversalClient) *RevokedTokenRepository {
	return &RevokedTokenRepository{client: client}
}

func (r *RevokedTokenRepository) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already past its natural expiry; verification rejects it without us.
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+token, "1", ttl).Err()
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired is satisfied by Redis key TTL; nothing to reap here.
func (r *RevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
