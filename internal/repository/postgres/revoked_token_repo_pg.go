package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type RevokedTokenRepository struct {
	db *sqlx.DB
}

func NewRevokedTokenRepo(db *sqlx.DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

func (r *RevokedTokenRepository) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	const query = `
        INSERT INTO revoked_token (token, expires_at)
        VALUES ($1, $2)
        ON CONFLICT (token) DO NOTHING
    `
	_, err := r.db.ExecContext(ctx, query, token, expiresAt)
	return err
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM revoked_token WHERE token = $1)`
	var revoked bool
	if err := r.db.GetContext(ctx, &revoked, query, token); err != nil {
		return false, err
	}
	return revoked, nil
}

// DeleteExpired reaps rows whose tokens are already rejected as expired by
// token verification, so the sweep never changes observable behavior.
func (r *RevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM revoked_token WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
