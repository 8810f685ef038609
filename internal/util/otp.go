package util

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// OTPDigits is the fixed width of every one-time code this service issues.
const OTPDigits = 6

// GenerateNumericOTP draws each digit independently from crypto/rand, so
// every code in 000000..999999 is equally likely, leading zeros included.
func GenerateNumericOTP(digits int) (string, error) {
	if digits <= 0 {
		digits = OTPDigits
	}
	var builder strings.Builder
	builder.Grow(digits)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		builder.WriteByte(byte('0' + n.Int64()))
	}
	return builder.String(), nil
}
