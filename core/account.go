package core

// Role is the authorization level attached to an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account represents a registered user
type Account struct {
	Email        string // Unique identity key
	PasswordHash string // Adaptive hash digest, never the raw password
	PublicKey    []byte // SPKI-encoded RSA public key, empty if MFA is not set up
	Role         Role
}

// MFAConfigured reports whether the account registered a public key and can
// complete the challenge-response flow.
func (a *Account) MFAConfigured() bool {
	return len(a.PublicKey) > 0
}

// Identity is the result of validating a credential or resolving a session.
type Identity struct {
	Email string
	Role  Role
}
