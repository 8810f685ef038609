package service

import (
	"errors"

	"github.com/veridian-dev/auth-api/internal/util"
)

var (
	ErrDuplicateAccount    = errors.New("account with this email or username already exists")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAlreadyVerified     = errors.New("email already verified")
	ErrNoOTPPending        = errors.New("no otp found for this account")
	ErrOTPMismatch         = errors.New("invalid otp")
	ErrOTPExpired          = errors.New("otp has expired")
	ErrInvalidRequestType  = errors.New("invalid request type")
	ErrUsernameTaken       = errors.New("username is already in use")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrEmailDeliveryFailed = errors.New("failed to send otp email")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrTokenRevoked        = errors.New("token has been revoked")

	// Token parse failures keep the util sentinels so errors.Is works across
	// both layers.
	ErrTokenExpired = util.ErrTokenExpired
	ErrTokenInvalid = util.ErrTokenInvalid
)
