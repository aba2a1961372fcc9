package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewVerificationCode returns a random 6-digit code for email verification.
// The range starts at 100000 so the code never collides with the zero value
// of the claim field.
func NewVerificationCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, fmt.Errorf("generate verification code: %w", err)
	}
	return int(n.Int64()) + 100000, nil
}
