// Package randcode generates short random codes for QR payloads and class verification.
package randcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	digits       = "0123456789"
	alphanumeric = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"
)

// Digits returns n random decimal digits. Leading zeros are kept.
func Digits(n int) (string, error) {
	return fromAlphabet(digits, n)
}

// Alphanumeric returns n random characters from an alphabet without look-alike glyphs.
func Alphanumeric(n int) (string, error) {
	return fromAlphabet(alphanumeric, n)
}

func fromAlphabet(alphabet string, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("randcode: length must be positive, got %d", n)
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("randcode: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
