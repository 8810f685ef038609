package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veridian-dev/auth-api/internal/domain"
	"github.com/veridian-dev/auth-api/internal/util"
)

func newTestService() (*AuthService, *fakeUserRepo, *fakeRevocationStore, *fakeMailer) {
	users := newFakeUserRepo()
	revoked := newFakeRevocationStore()
	mailer := &fakeMailer{}
	svc := NewAuthService(users, revoked, util.NewJWTManager("test-secret"), mailer, 24*time.Hour, 15*time.Minute)
	return svc, users, revoked, mailer
}

func mustRegister(t *testing.T, svc *AuthService, username, email, password string) *AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), username, email, password)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return result
}

func TestRegisterSuccess(t *testing.T) {
	svc, users, _, mailer := newTestService()

	result := mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")

	if result.Token == "" {
		t.Fatal("expected session token in result")
	}
	if result.User.EmailVerified {
		t.Fatal("fresh accounts must start unverified")
	}
	if bytes.Equal(result.User.PasswordHash, []byte("Passw0rd")) {
		t.Fatal("stored hash must never equal the plaintext password")
	}
	if !util.VerifyPassword("Passw0rd", result.User.PasswordSalt, result.User.PasswordHash) {
		t.Fatal("stored hash must verify against the original password")
	}

	sent, ok := mailer.last()
	if !ok {
		t.Fatal("expected a verification email")
	}
	if sent.purpose != domain.OTPPurposeVerification {
		t.Fatalf("expected verification purpose, got %v", sent.purpose)
	}
	if len(sent.code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", sent.code)
	}

	rec := users.pendingOTP(result.User.ID)
	if rec == nil || rec.Code != sent.code {
		t.Fatal("persisted OTP must match the emailed code")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService()
	mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")

	if _, err := svc.Register(context.Background(), "bob", "a@x.com", "Passw0rd"); !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount for reused email, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "alice", "b@x.com", "Passw0rd"); !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount for reused username, got %v", err)
	}
}

func TestRegisterEmailDeliveryFailure(t *testing.T) {
	svc, users, _, mailer := newTestService()
	mailer.fail = true

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "Passw0rd")
	if !errors.Is(err, ErrEmailDeliveryFailed) {
		t.Fatalf("expected ErrEmailDeliveryFailed, got %v", err)
	}

	// The account row survives the failed send; resend is the recovery path.
	if _, err := users.FindByEmail(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("expected account to persist after delivery failure: %v", err)
	}
}

func TestVerifyEmailOrderedChecks(t *testing.T) {
	svc, users, _, mailer := newTestService()
	ctx := context.Background()

	if _, err := svc.VerifyEmail(ctx, "missing@x.com", "123456"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	result := mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")
	sent, _ := mailer.last()

	wrong := "000000"
	if wrong == sent.code {
		wrong = "000001"
	}
	if _, err := svc.VerifyEmail(ctx, "a@x.com", wrong); !errors.Is(err, ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}

	user, err := svc.VerifyEmail(ctx, "a@x.com", sent.code)
	if err != nil {
		t.Fatalf("VerifyEmail returned error: %v", err)
	}
	if !user.EmailVerified {
		t.Fatal("expected account to be verified")
	}
	if users.pendingOTP(result.User.ID) != nil {
		t.Fatal("expected OTP to be cleared on success")
	}

	if _, err := svc.VerifyEmail(ctx, "a@x.com", sent.code); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestVerifyEmailNoOTPPending(t *testing.T) {
	svc, users, _, mailer := newTestService()
	ctx := context.Background()

	result := mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")
	if err := users.ClearOTP(ctx, result.User.ID); err != nil {
		t.Fatalf("ClearOTP: %v", err)
	}

	sent, _ := mailer.last()
	if _, err := svc.VerifyEmail(ctx, "a@x.com", sent.code); !errors.Is(err, ErrNoOTPPending) {
		t.Fatalf("expected ErrNoOTPPending, got %v", err)
	}
}

func TestOTPExpiryBoundary(t *testing.T) {
	svc, _, _, mailer := newTestService()
	ctx := context.Background()

	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }

	mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")
	sent, _ := mailer.last()

	// Just inside the 10-minute window.
	svc.now = func() time.Time { return issuedAt.Add(otpTTLStandard - time.Nanosecond) }
	if _, err := svc.VerifyEmail(ctx, "a@x.com", sent.code); err != nil {
		t.Fatalf("expected OTP to be accepted before expiry, got %v", err)
	}
}

func TestOTPExpiredOneUnitAfter(t *testing.T) {
	svc, _, _, mailer := newTestService()
	ctx := context.Background()

	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }

	mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")
	sent, _ := mailer.last()

	svc.now = func() time.Time { return issuedAt.Add(otpTTLStandard + time.Nanosecond) }
	if _, err := svc.VerifyEmail(ctx, "a@x.com", sent.code); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired one unit past expiry, got %v", err)
	}
}

func TestReissueInvalidatesPreviousOTP(t *testing.T) {
	svc, _, _, mailer := newTestService()
	ctx := context.Background()

	mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")
	first, _ := mailer.last()

	if _, err := svc.ResendEmail(ctx, "a@x.com", int(domain.OTPPurposeVerification)); err != nil {
		t.Fatalf("ResendEmail returned error: %v", err)
	}
	second, _ := mailer.last()

	if first.code == second.code {
		t.Skip("codes collided; re-issue produced the same 6 digits")
	}
	if _, err := svc.VerifyEmail(ctx, "a@x.com", first.code); !errors.Is(err, ErrOTPMismatch) {
		t.Fatalf("expected old code to fail with ErrOTPMismatch, got %v", err)
	}
	if _, err := svc.VerifyEmail(ctx, "a@x.com", second.code); err != nil {
		t.Fatalf("expected new code to verify, got %v", err)
	}
}

func TestResendEmailRules(t *testing.T) {
	svc, users, _, mailer := newTestService()
	ctx := context.Background()

	result := mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")

	if _, err := svc.ResendEmail(ctx, "a@x.com", 3); !errors.Is(err, ErrInvalidRequestType) {
		t.Fatalf("expected ErrInvalidRequestType, got %v", err)
	}

	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }
	if _, err := svc.ResendEmail(ctx, "a@x.com", 2); err != nil {
		t.Fatalf("type 2 resend should work for unverified accounts: %v", err)
	}
	sent, _ := mailer.last()
	if sent.purpose != domain.OTPPurposePasswordReset {
		t.Fatalf("expected password reset purpose, got %v", sent.purpose)
	}
	rec := users.pendingOTP(result.User.ID)
	if rec == nil || !rec.ExpiresAt.Equal(issuedAt.Add(otpTTLStandard)) {
		t.Fatal("type 2 resend must use the 10-minute window")
	}

	if _, err := users.MarkVerified(ctx, result.User.ID); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}
	if _, err := svc.ResendEmail(ctx, "a@x.com", 1); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified for type 1 on verified account, got %v", err)
	}
	if _, err := svc.ResendEmail(ctx, "a@x.com", 2); err != nil {
		t.Fatalf("type 2 resend must ignore verification state: %v", err)
	}
}

func TestSignInUnverifiedSendsShortOTP(t *testing.T) {
	svc, users, _, mailer := newTestService()
	ctx := context.Background()

	result := mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")

	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }

	res, err := svc.SignIn(ctx, "a@x.com", "Passw0rd")
	if !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
	if res == nil || res.User == nil {
		t.Fatal("expected sanitized user alongside ErrEmailNotVerified")
	}
	if res.Token != "" {
		t.Fatal("unverified sign-in must not issue a session token")
	}

	sent, _ := mailer.last()
	if sent.purpose != domain.OTPPurposeVerification {
		t.Fatalf("expected verification purpose, got %v", sent.purpose)
	}
	rec := users.pendingOTP(result.User.ID)
	if rec == nil || !rec.ExpiresAt.Equal(issuedAt.Add(otpTTLShort)) {
		t.Fatal("sign-in re-verification must use the 2-minute window")
	}
}

func TestSignInVerified(t *testing.T) {
	svc, _, _, mailer := newTestService()
	ctx := context.Background()

	mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")
	sent, _ := mailer.last()
	if _, err := svc.VerifyEmail(ctx, "a@x.com", sent.code); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	if _, err := svc.SignIn(ctx, "missing@x.com", "Passw0rd"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "a@x.com", "WrongPass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	res, err := svc.SignIn(ctx, "a@x.com", "Passw0rd")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected session token for verified sign-in")
	}
	if _, err := svc.Authenticate(ctx, res.Token); err != nil {
		t.Fatalf("issued token should authenticate: %v", err)
	}
}

func TestForgotPasswordFlow(t *testing.T) {
	svc, users, _, mailer := newTestService()
	ctx := context.Background()

	if _, err := svc.ForgotPassword(ctx, "missing@x.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	result := mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")

	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }
	if _, err := svc.ForgotPassword(ctx, "a@x.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}
	sent, _ := mailer.last()
	if sent.purpose != domain.OTPPurposePasswordReset {
		t.Fatalf("expected password reset purpose, got %v", sent.purpose)
	}
	rec := users.pendingOTP(result.User.ID)
	if rec == nil || !rec.ExpiresAt.Equal(issuedAt.Add(otpTTLShort)) {
		t.Fatal("forgot-password must use the 2-minute window")
	}

	// Exchange the code for a reset-authorization token.
	res, err := svc.VerifyResetOTP(ctx, "a@x.com", sent.code)
	if err != nil {
		t.Fatalf("VerifyResetOTP returned error: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected reset token")
	}
	if users.pendingOTP(result.User.ID) != nil {
		t.Fatal("expected OTP cleared after exchange")
	}
	if res.User.EmailVerified {
		t.Fatal("reset OTP exchange must not touch the verified flag")
	}

	// Reset, then prove the password actually changed.
	if _, err := svc.ResetPassword(ctx, res.Token, "NewPass1"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if _, err := svc.SignIn(ctx, "a@x.com", "Passw0rd"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must fail after reset, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "a@x.com", "NewPass1"); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("new password should pass the credential check, got %v", err)
	}
}

func TestResetPasswordTokenChecks(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	result := mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")

	if _, err := svc.ResetPassword(ctx, "not-a-token", "NewPass1"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	expired, _, err := svc.tokens.Generate(result.User.ID, result.User.Email, -time.Second)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.ResetPassword(ctx, expired, "NewPass1"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	// A token whose email claim no longer matches the account is stale.
	stale, _, err := svc.tokens.Generate(result.User.ID, "old@x.com", time.Minute)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.ResetPassword(ctx, stale, "NewPass1"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound for stale email claim, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, revoked, mailer := newTestService()
	ctx := context.Background()

	mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")
	sent, _ := mailer.last()
	if _, err := svc.VerifyEmail(ctx, "a@x.com", sent.code); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	res, err := svc.SignIn(ctx, "a@x.com", "Passw0rd")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if _, err := svc.Authenticate(ctx, res.Token); err != nil {
		t.Fatalf("expected token to authenticate before logout: %v", err)
	}

	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := svc.Authenticate(ctx, res.Token); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}

	// Revocation stores the token with its original expiry for the sweep.
	if ok, _ := revoked.IsRevoked(ctx, res.Token); !ok {
		t.Fatal("expected token in revocation store")
	}

	if err := svc.Logout(ctx, "garbage"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for malformed token, got %v", err)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	svc, _, _, _ := newTestService()

	result := mustRegister(t, svc, "alice", "a@x.com", "Passw0rd")
	expired, _, err := svc.tokens.Generate(result.User.ID, result.User.Email, -time.Second)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), expired); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
