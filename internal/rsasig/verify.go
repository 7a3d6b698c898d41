// Package rsasig verifies RSASSA-PKCS1-v1_5 signatures over SHA-256 digests
// against SPKI-encoded public keys.
package rsasig

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"

	"github.com/layer-3/cerberus/ports"
)

// Verifier implements the SignatureVerifier interface. It fails closed: any
// decoding or cryptographic error reports false, so callers never learn
// whether the key, the signature bytes or the signature itself was bad.
type Verifier struct{}

// NewVerifier creates a new RSA signature verifier
func NewVerifier() Verifier {
	return Verifier{}
}

// Verify checks a signature over the raw message bytes against an
// SPKI-encoded RSA public key
func (Verifier) Verify(message, signature, publicKey []byte) bool {
	parsed, err := x509.ParsePKIXPublicKey(publicKey)
	if err != nil {
		return false
	}
	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return false
	}

	digest := sha256.Sum256(message)
	return rsa.VerifyPKCS1v15(rsaKey, crypto.SHA256, digest[:], signature) == nil
}

var _ ports.SignatureVerifier = Verifier{}
