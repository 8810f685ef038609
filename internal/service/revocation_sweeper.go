package service

import (
	"context"
	"log"
	"time"

	"github.com/veridian-dev/auth-api/internal/repository/ports"
)

// RevocationSweeper reaps blacklist entries whose tokens already expired.
// Expiry is still enforced by timestamp comparison at verification time; the
// sweep only keeps the table from growing without bound. Stores with native
// TTL (Redis) make DeleteExpired a no-op.
type RevocationSweeper struct {
	store    ports.RevokedTokenRepository
	interval time.Duration
}

func NewRevocationSweeper(store ports.RevokedTokenRepository, interval time.Duration) *RevocationSweeper {
	return &RevocationSweeper{store: store, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *RevocationSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.DeleteExpired(ctx, time.Now())
			if err != nil {
				log.Printf("revoked token sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("revoked token sweep removed %d expired entries", n)
			}
		}
	}
}
