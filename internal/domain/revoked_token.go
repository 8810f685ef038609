package domain

import "time"

// RevokedToken blacklists one exact session token string until its natural
// expiry passes. Rows past ExpiresAt carry no information (the token is
// already rejected as expired) and are reaped by the background sweep.
type RevokedToken struct {
	Token     string    `db:"token" json:"token"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
