package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credential hashing for directory entries. The bcrypt hash embeds its own
// salt and cost, so nothing beyond the stored string is needed to verify.

// HashPassword derives the stored credential hash from a plaintext password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is empty", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against the stored hash. A nil
// return means the credential matches.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return fmt.Errorf("%w: no credential on record", ErrInvalidInput)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
