package validation

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var (
	upperRe = regexp.MustCompile(`[A-Z]`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(6, 0).Error("password must be at least 6 characters long"),
		validation.Match(upperRe).Error("password must contain at least one uppercase letter"),
		validation.Match(lowerRe).Error("password must contain at least one lowercase letter"),
		validation.Match(digitRe).Error("password must contain at least one number"),
	}
}

func otpRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(6, 6).Error("otp must be 6 digits"),
		is.Digit.Error("otp must contain only numbers"),
	}
}

// RegisterRequest carries the registration payload.
type RegisterRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserName,
			validation.Required,
			validation.Length(3, 30).Error("username must be between 3 and 30 characters"),
		),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, passwordRules()...),
	)
}

// VerifyEmailRequest carries an email plus the one-time code to consume.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (r *VerifyEmailRequest) Normalize() {
	r.OTP = strings.TrimSpace(r.OTP)
}

func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, otpRules()...),
	)
}

// ResendEmailRequest re-issues a code. Type 1 is verification, type 2 is
// password reset; anything else is the controller's call, not the schema's.
type ResendEmailRequest struct {
	Email string `json:"email"`
	Type  int    `json:"type"`
}

func (r ResendEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Type, validation.Required, validation.Min(1)),
	)
}

// SignInRequest carries credentials; the password policy is only enforced at
// registration and reset time.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// ForgotPasswordRequest starts the reset sub-flow.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// VerifyOTPRequest exchanges a reset code for a reset-authorization token.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (r *VerifyOTPRequest) Normalize() {
	r.OTP = strings.TrimSpace(r.OTP)
}

func (r VerifyOTPRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, otpRules()...),
	)
}

// ResetPasswordRequest carries the replacement password.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NewPassword, passwordRules()...),
	)
}

// UpdateProfileRequest changes the username.
type UpdateProfileRequest struct {
	UserName string `json:"userName"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserName,
			validation.Required,
			validation.Length(3, 30).Error("username must be between 3 and 30 characters"),
		),
	)
}
