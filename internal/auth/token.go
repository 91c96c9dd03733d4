package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// NewSessionToken returns a 32-hex-char opaque bearer token.
func NewSessionToken() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
