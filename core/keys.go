package core

// KeyPurpose tags which short-lived mechanism a KV store entry belongs to.
// Temporary tokens and challenges share one store; the purpose tag keeps
// their namespaces from colliding.
type KeyPurpose string

const (
	PurposeTemporaryToken KeyPurpose = "temp_token"
	PurposeChallenge      KeyPurpose = "challenge"
)

// StoreKey is a composite key into the expiring KV store.
type StoreKey struct {
	Purpose KeyPurpose
	ID      string
}

func (k StoreKey) String() string {
	return string(k.Purpose) + ":" + k.ID
}

// TemporaryTokenKey addresses a temp token entry by the token value itself.
func TemporaryTokenKey(token string) StoreKey {
	return StoreKey{Purpose: PurposeTemporaryToken, ID: token}
}

// ChallengeKey addresses the current challenge for an identity. Keying by
// identity rather than by temp token means regenerating a challenge
// supersedes the previous one with no extra bookkeeping.
func ChallengeKey(email string) StoreKey {
	return StoreKey{Purpose: PurposeChallenge, ID: email}
}
