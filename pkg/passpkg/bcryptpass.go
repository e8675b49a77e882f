// Package passpkg hashes and verifies secrets with bcrypt.
package passpkg

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest secret bcrypt accepts, in bytes.
const MaxLength = 72

// ErrTooLong is returned by Hash for secrets longer than MaxLength.
var ErrTooLong = errors.New("secret is longer than 72 bytes")

// Hash returns the bcrypt hash of the secret.
func Hash(secret string) (string, error) {
	if len(secret) > MaxLength {
		return "", ErrTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}

	return string(hashed), nil
}

// Check reports whether secret matches the hash. A mismatch returns
// bcrypt.ErrMismatchedHashAndPassword.
func Check(secret string, hashed string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret))
}
