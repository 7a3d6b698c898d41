package tokenizer

import "github.com/golang-jwt/jwt/v5"

// CredentialClaims combines standard claims with the role claim carried by
// every bearer credential
type CredentialClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}
