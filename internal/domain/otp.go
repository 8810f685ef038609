package domain

import "time"

// OTP is a single live one-time code. The record is purpose-agnostic: the
// flow that consumes it decides whether it proves email ownership for
// verification or for a password reset.
type OTP struct {
	Code      string
	ExpiresAt time.Time
}

// OTPPurpose selects the email template and the audit wording. Values match
// the request "type" field of the resend endpoint.
type OTPPurpose int

const (
	OTPPurposeVerification  OTPPurpose = 1
	OTPPurposePasswordReset OTPPurpose = 2
)

func (p OTPPurpose) String() string {
	switch p {
	case OTPPurposeVerification:
		return "email verification"
	case OTPPurposePasswordReset:
		return "password reset"
	default:
		return "unknown"
	}
}
