package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/ports"
)

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs. The
// signing secret is the single trust anchor of the bearer-credential scheme:
// validity is proven by signature plus expiry alone, with no server-side
// record of issued credentials.
type JWTTokenizer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(secret []byte, issuer string) *JWTTokenizer {
	return &JWTTokenizer{
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}
}

// SetClock overrides the tokenizer's time source, for tests.
func (j *JWTTokenizer) SetClock(now func() time.Time) {
	j.now = now
}

// Issue produces a signed credential for the subject
func (j *JWTTokenizer) Issue(subject string, role core.Role, ttl time.Duration) (string, error) {
	now := j.now()
	claims := CredentialClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}
	return signed, nil
}

// Validate verifies the credential signature and expiry
func (j *JWTTokenizer) Validate(credential string) (*core.Identity, error) {
	token, err := jwt.ParseWithClaims(credential, &CredentialClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithIssuer(j.issuer), jwt.WithTimeFunc(func() time.Time { return j.now() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrCredentialExpired
		}
		return nil, core.ErrCredentialInvalid
	}

	if !token.Valid {
		return nil, core.ErrCredentialInvalid
	}

	claims, ok := token.Claims.(*CredentialClaims)
	if !ok {
		return nil, core.ErrCredentialInvalid
	}

	return &core.Identity{
		Email: claims.Subject,
		Role:  core.Role(claims.Role),
	}, nil
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)
