package core

import "errors"

var (
	// ErrInvalidCredentials is returned when the identity or password is wrong
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMFANotConfigured is returned when an account has no registered public key
	ErrMFANotConfigured = errors.New("mfa not configured for account")

	// ErrInvalidTemporaryToken is returned when a temporary login token is
	// absent, expired or already consumed
	ErrInvalidTemporaryToken = errors.New("invalid or expired temporary token")

	// ErrInvalidChallenge is returned when a challenge is absent, expired,
	// superseded or does not match the supplied value
	ErrInvalidChallenge = errors.New("invalid or expired challenge")

	// ErrInvalidSignature is returned when signature verification fails
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrAlreadyExists is returned on duplicate registration
	ErrAlreadyExists = errors.New("account already exists")

	// ErrAccountNotFound is returned when no account matches the identity key
	ErrAccountNotFound = errors.New("account not found")

	// ErrSessionNotFound is returned when no session matches the opaque token
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a session record is past its expiry
	ErrSessionExpired = errors.New("session expired")

	// ErrForbidden is returned when a session does not belong to the caller
	ErrForbidden = errors.New("session does not belong to account")

	// ErrCredentialInvalid is returned when a bearer credential is badly signed
	// or otherwise malformed
	ErrCredentialInvalid = errors.New("invalid credential")

	// ErrCredentialExpired is returned when a bearer credential is past its expiry
	ErrCredentialExpired = errors.New("credential expired")

	// ErrKeyNotFound is returned by the KV store when a key is absent or expired
	ErrKeyNotFound = errors.New("key not found")

	// ErrStoreOperationFailed is returned when a store operation fails
	ErrStoreOperationFailed = errors.New("store operation failed")
)
