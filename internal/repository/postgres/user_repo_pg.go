package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/veridian-dev/auth-api/internal/domain"
)

const userColumns = "id, username, email, password_hash, password_salt, email_verified, otp_code, otp_expires_at, created_at, updated_at"

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, username, email string, passwordHash, passwordSalt []byte, otpCode string, otpExpiresAt time.Time) (*domain.User, error) {
	const query = `
        INSERT INTO user_account (username, email, password_hash, password_salt, otp_code, otp_expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, username, email, passwordHash, passwordSalt, otpCode, otpExpiresAt)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user_account WHERE email = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM user_account
        WHERE email = $1 OR username = $2
        LIMIT 1
    `
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email, username); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user_account WHERE id = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetOTP overwrites any previous code, so only the newest one is ever live.
func (r *UserRepository) SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	const query = `
        UPDATE user_account
        SET otp_code = $2,
            otp_expires_at = $3,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, code, expiresAt)
	return err
}

func (r *UserRepository) ClearOTP(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE user_account
        SET otp_code = NULL,
            otp_expires_at = NULL,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// MarkVerified flips the verified flag and clears the consumed OTP in one
// statement, keeping the two mutations atomic.
func (r *UserRepository) MarkVerified(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
        UPDATE user_account
        SET email_verified = TRUE,
            otp_code = NULL,
            otp_expires_at = NULL,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, id)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	const query = `
        UPDATE user_account
        SET password_hash = $2,
            password_salt = $3,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, passwordHash, passwordSalt)
	return err
}

func (r *UserRepository) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*domain.User, error) {
	const query = `
        UPDATE user_account
        SET username = $2,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, id, username)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM user_account WHERE username = $1 AND id <> $2
        )
    `
	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, username, excludeID); err != nil {
		return false, err
	}
	return taken, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM user_account WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
