package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// OTPLength is the fixed digit length of emailed verification codes.
	OTPLength = 6

	// OTPTTL is the validity window of a code from the moment it is issued.
	OTPTTL = 10 * time.Minute
)

// GenerateOTP returns a zero-padded numeric code of OTPLength digits drawn
// from crypto/rand.
func GenerateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < OTPLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	return fmt.Sprintf("%0*d", OTPLength, n), nil
}
