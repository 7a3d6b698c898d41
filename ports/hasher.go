package ports

// PasswordHasher is the adaptive password hashing primitive.
type PasswordHasher interface {
	// Hash derives a digest from a raw password.
	Hash(raw string) (string, error)

	// Matches compares a raw password against a digest in constant effort.
	Matches(raw, digest string) bool
}
