package usecase

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// otpLength is the fixed digit count of every one-time code.
const otpLength = 6

// generateOneTimeCode returns a uniformly random, fixed-length numeric code.
// A counter would be guessable; crypto/rand over the full 10^6 range is not.
func generateOneTimeCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpLength, n), nil
}
