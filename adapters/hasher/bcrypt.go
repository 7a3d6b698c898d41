// Package hasher implements the password hashing port with bcrypt.
package hasher

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/layer-3/cerberus/ports"
)

// Bcrypt implements the PasswordHasher interface
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a bcrypt hasher with the default cost
func NewBcrypt() *Bcrypt {
	return &Bcrypt{cost: bcrypt.DefaultCost}
}

// Hash derives a digest from a raw password
func (b *Bcrypt) Hash(raw string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(raw), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Matches compares a raw password against a digest
func (b *Bcrypt) Matches(raw, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(raw)) == nil
}

var _ ports.PasswordHasher = (*Bcrypt)(nil)
