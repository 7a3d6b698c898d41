package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenBytes is the entropy used for temp tokens, challenges and session
// tokens: 32 bytes = 256 bits.
const TokenBytes = 32

// RandomToken generates a secure random value of n bytes, encoded as
// unpadded URL-safe base64.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
