package http

import (
	"time"

	"github.com/veridian-dev/auth-api/internal/domain"
)

const timeFormat = time.RFC3339

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid credentials"`
}

// AuthUser is the sanitized account view returned by every endpoint. It never
// carries the password hash, the salt, or the pending OTP.
type AuthUser struct {
	ID              string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	UserName        string    `json:"userName" example:"alice"`
	Email           string    `json:"email" example:"user@example.com"`
	IsEmailVerified bool      `json:"isEmailVerified" example:"true"`
	CreatedAt       time.Time `json:"createdAt" example:"2024-01-01T12:00:00Z"`
}

func newAuthUser(u *domain.User) AuthUser {
	return AuthUser{
		ID:              u.ID.String(),
		UserName:        u.Username,
		Email:           u.Email,
		IsEmailVerified: u.EmailVerified,
		CreatedAt:       u.CreatedAt,
	}
}

// AuthTokenResponse is returned by endpoints that issue JWT tokens.
type AuthTokenResponse struct {
	Message   string   `json:"message" example:"Sign in successful"`
	Token     string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt string   `json:"expiresAt" example:"2024-01-02T09:30:00Z"`
	User      AuthUser `json:"user"`
}

// AuthUserResponse wraps a user object with a status message.
type AuthUserResponse struct {
	Message string   `json:"message" example:"Email verified successfully"`
	User    AuthUser `json:"user"`
}
