package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/veridian-dev/auth-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, username, email string, passwordHash, passwordSalt []byte, otpCode string, otpExpiresAt time.Time) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*domain.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
