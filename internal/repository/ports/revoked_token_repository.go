package ports

import (
	"context"
	"time"
)

// RevokedTokenRepository is the session token blacklist. A token revoked here
// stays invalid for the rest of its natural lifetime; stores may reclaim rows
// past their expiry either natively (Redis key TTL) or via DeleteExpired.
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
