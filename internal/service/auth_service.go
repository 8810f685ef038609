package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/veridian-dev/auth-api/internal/domain"
	"github.com/veridian-dev/auth-api/internal/repository/ports"
	"github.com/veridian-dev/auth-api/internal/util"
)

const (
	// Registration and both resend types hand out the longer window; the
	// sign-in re-verification and forgot-password codes expire fast. The
	// asymmetry is inherited behavior, deliberately not normalized.
	otpTTLStandard = 10 * time.Minute
	otpTTLShort    = 2 * time.Minute

	uniqueViolation = "23505"
)

// OTPMailer delivers one-time codes. Delivery failure is fatal to the
// enclosing request but never rolls back already-persisted state.
type OTPMailer interface {
	SendOTP(ctx context.Context, email, code string, purpose domain.OTPPurpose) error
}

// AuthResult is what token-issuing flows hand back to the transport layer.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService drives the account lifecycle: registration, email verification,
// sign-in, password reset, and session revocation.
type AuthService struct {
	users   ports.UserRepository
	revoked ports.RevokedTokenRepository
	tokens  *util.JWTManager
	mailer  OTPMailer

	sessionTTL    time.Duration
	resetTokenTTL time.Duration
	now           func() time.Time
}

func NewAuthService(users ports.UserRepository, revoked ports.RevokedTokenRepository, tokens *util.JWTManager, mailer OTPMailer, sessionTTL, resetTokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		revoked:       revoked,
		tokens:        tokens,
		mailer:        mailer,
		sessionTTL:    sessionTTL,
		resetTokenTTL: resetTokenTTL,
		now:           time.Now,
	}
}

// Register creates an unverified account, emails it a 6-digit verification
// code, and issues a session token. If the email cannot be delivered the
// account row is kept (resend type 1 is the recovery path) but no token is
// returned.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if _, err := s.users.FindByEmailOrUsername(ctx, email, username); err == nil {
		return nil, ErrDuplicateAccount
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, err
	}

	code, err := util.GenerateNumericOTP(util.OTPDigits)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, username, email, hash, salt, code, s.now().Add(otpTTLStandard))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}

	if err := s.mailer.SendOTP(ctx, user.Email, code, domain.OTPPurposeVerification); err != nil {
		return nil, ErrEmailDeliveryFailed
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// VerifyEmail consumes a pending verification code and flips the account to
// verified. Checks run in a fixed order: existence, verified state, code
// presence, code match, expiry.
func (s *AuthService) VerifyEmail(ctx context.Context, email, otp string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, asAccountLookupErr(err)
	}
	if user.EmailVerified {
		return nil, ErrAlreadyVerified
	}
	if err := s.checkOTP(user.PendingOTP(), otp); err != nil {
		return nil, err
	}
	return s.users.MarkVerified(ctx, user.ID)
}

// ResendEmail re-issues a code. Type 1 (verification) refuses already
// verified accounts; type 2 (password reset) works regardless of
// verification state. Both use the 10-minute window.
func (s *AuthService) ResendEmail(ctx context.Context, email string, otpType int) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, asAccountLookupErr(err)
	}

	switch domain.OTPPurpose(otpType) {
	case domain.OTPPurposeVerification:
		if user.EmailVerified {
			return nil, ErrAlreadyVerified
		}
		if err := s.issueOTP(ctx, user, otpTTLStandard, domain.OTPPurposeVerification); err != nil {
			return nil, err
		}
	case domain.OTPPurposePasswordReset:
		if err := s.issueOTP(ctx, user, otpTTLStandard, domain.OTPPurposePasswordReset); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidRequestType
	}
	return user, nil
}

// SignIn authenticates credentials. For unverified accounts it issues a fresh
// short-lived verification code and returns ErrEmailNotVerified together with
// the sanitized user, so the transport can answer 403 without a token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, asAccountLookupErr(err)
	}

	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		if err := s.issueOTP(ctx, user, otpTTLShort, domain.OTPPurposeVerification); err != nil {
			return nil, err
		}
		return &AuthResult{User: user}, ErrEmailNotVerified
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ForgotPassword issues a short-lived reset code. No token is issued until
// the code is proven via VerifyResetOTP.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, asAccountLookupErr(err)
	}
	if err := s.issueOTP(ctx, user, otpTTLShort, domain.OTPPurposePasswordReset); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyResetOTP exchanges a valid code for a reset-authorization token and
// clears the code. The verified flag is left untouched.
func (s *AuthService) VerifyResetOTP(ctx context.Context, email, otp string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, asAccountLookupErr(err)
	}
	if err := s.checkOTP(user.PendingOTP(), otp); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, s.resetTokenTTL)
	if err != nil {
		return nil, err
	}
	if err := s.users.ClearOTP(ctx, user.ID); err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ResetPassword replaces the password after verifying the reset token. The
// subject must still exist and its email must match the token claim, which
// guards against tokens surviving an account change. The token itself is not
// revoked; it dies at its natural 15-minute expiry.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, asAccountLookupErr(err)
	}
	if !strings.EqualFold(user.Email, claims.Email) {
		return nil, ErrAccountNotFound
	}

	hash, salt, err := util.DerivePassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, salt); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout blacklists the exact token string until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return ErrUnauthorized
	}
	return s.revoked.Revoke(ctx, token, claims.ExpiresAt.Time)
}

// Authenticate validates a bearer token for protected routes. The revocation
// list is consulted before the signature so a revoked token is rejected even
// if it would otherwise parse.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*util.Claims, error) {
	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return s.tokens.Parse(token)
}

func (s *AuthService) issueOTP(ctx context.Context, user *domain.User, ttl time.Duration, purpose domain.OTPPurpose) error {
	code, err := util.GenerateNumericOTP(util.OTPDigits)
	if err != nil {
		return err
	}
	if err := s.users.SetOTP(ctx, user.ID, code, s.now().Add(ttl)); err != nil {
		return err
	}
	if err := s.mailer.SendOTP(ctx, user.Email, code, purpose); err != nil {
		return ErrEmailDeliveryFailed
	}
	return nil
}

// checkOTP runs the ordered validity checks: presence, match, expiry. The
// mismatch check comes before expiry, matching observed API behavior.
func (s *AuthService) checkOTP(rec *domain.OTP, supplied string) error {
	if rec == nil {
		return ErrNoOTPPending
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(supplied)) != 1 {
		return ErrOTPMismatch
	}
	if s.now().After(rec.ExpiresAt) {
		return ErrOTPExpired
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func asAccountLookupErr(err error) error {
	if isNotFound(err) {
		return ErrAccountNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
