package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword creates a bcrypt hash of a password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword checks if a password matches the hashed version.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

var dummyHash = sync.OnceValue(func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("attendapi-no-such-account"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(h)
})

// DummyHash is a valid bcrypt hash at the default cost that no real password
// is expected to match. Verifying against it costs the same as a real check.
func DummyHash() string {
	return dummyHash()
}
