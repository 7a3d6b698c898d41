package ports

// SignatureVerifier validates an asymmetric signature over a message against
// an encoded public key. Implementations fail closed: malformed keys,
// malformed signatures and algorithm mismatches all report false, never an
// error, so callers cannot distinguish malformed input from a wrong
// signature.
type SignatureVerifier interface {
	Verify(message, signature, publicKey []byte) bool
}
