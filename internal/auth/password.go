// Package auth provides password hashing and session token generation for
// the credential store.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt truncates beyond 72 bytes, so longer passwords are rejected upfront.
const MaxPasswordLength = 72

// HashPassword derives a salted bcrypt hash from a plain password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// ComparePassword reports whether the plain password matches the stored hash.
func ComparePassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
