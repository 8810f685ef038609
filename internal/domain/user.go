package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Username      string     `db:"username" json:"userName"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  []byte     `db:"password_hash" json:"-"`
	PasswordSalt  []byte     `db:"password_salt" json:"-"`
	EmailVerified bool       `db:"email_verified" json:"isEmailVerified"`
	OTPCode       *string    `db:"otp_code" json:"-"`
	OTPExpiresAt  *time.Time `db:"otp_expires_at" json:"-"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// PendingOTP returns the embedded one-time code, or nil when none was issued
// or a previous flow already consumed it.
func (u *User) PendingOTP() *OTP {
	if u.OTPCode == nil || u.OTPExpiresAt == nil {
		return nil
	}
	return &OTP{Code: *u.OTPCode, ExpiresAt: *u.OTPExpiresAt}
}
