package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/ports"
)

const (
	// TemporaryTokenTTL bounds how long a client has between the password
	// check and completing the challenge-response steps.
	TemporaryTokenTTL = 5 * time.Minute

	// ChallengeTTL bounds how long a signed challenge stays acceptable.
	ChallengeTTL = 2 * time.Minute
)

// AuthService drives the three-step MFA protocol. It holds no per-login
// state of its own: every step reconstructs the protocol state from KV store
// lookups, so instances scale horizontally and calls for different
// identities never contend. Per-key atomicity under concurrent calls for the
// same identity is the store's responsibility.
type AuthService struct {
	accounts ports.AccountStore
	kv       ports.KVStore
	hasher   ports.PasswordHasher
	verifier ports.SignatureVerifier
	tokens   ports.Tokenizer
	events   ports.EventPublisher
	logger   *slog.Logger

	tempTokenTTL  time.Duration
	challengeTTL  time.Duration
	credentialTTL time.Duration

	// dummyDigest is a real digest of a throwaway value, computed once at
	// construction. The unknown-identity path compares against it so that
	// misses pay the same hashing cost as hits; comparing against an empty
	// digest would fail on parsing before any work is done.
	dummyDigest string
}

// NewAuthService creates a new authentication service
func NewAuthService(
	accounts ports.AccountStore,
	kv ports.KVStore,
	hasher ports.PasswordHasher,
	verifier ports.SignatureVerifier,
	tokens ports.Tokenizer,
	events ports.EventPublisher,
	logger *slog.Logger,
	credentialTTL time.Duration,
) *AuthService {
	dummyDigest, _ := hasher.Hash("cerberus.dummy.password")
	return &AuthService{
		accounts:      accounts,
		kv:            kv,
		hasher:        hasher,
		verifier:      verifier,
		tokens:        tokens,
		events:        events,
		logger:        logger,
		tempTokenTTL:  TemporaryTokenTTL,
		challengeTTL:  ChallengeTTL,
		credentialTTL: credentialTTL,
		dummyDigest:   dummyDigest,
	}
}

// Register creates a new account. The public key is optional; without one
// the account can only use the session path, not MFA.
func (s *AuthService) Register(ctx context.Context, email, password string, publicKey []byte) error {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account := &core.Account{
		Email:        email,
		PasswordHash: digest,
		PublicKey:    publicKey,
		Role:         core.RoleUser,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return err
	}

	s.logger.Info("account registered", "email", email, "mfa", account.MFAConfigured())
	return nil
}

// BeginLogin is step 1: the only point where the raw password is checked.
// On success it mints a temporary token bound to the identity and stores it
// with a short TTL.
func (s *AuthService) BeginLogin(ctx context.Context, email, password string) (string, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		// Compare against the dummy digest so absent and present accounts
		// cost the same; the result can never be a match.
		s.hasher.Matches(password, s.dummyDigest)
		return "", core.ErrInvalidCredentials
	}

	if !s.hasher.Matches(password, account.PasswordHash) {
		return "", core.ErrInvalidCredentials
	}

	if !account.MFAConfigured() {
		return "", core.ErrMFANotConfigured
	}

	token, err := core.RandomToken(core.TokenBytes)
	if err != nil {
		return "", err
	}

	if err := s.kv.Set(ctx, core.TemporaryTokenKey(token), email, s.tempTokenTTL); err != nil {
		return "", err
	}

	return token, nil
}

// RequestChallenge is step 2: a non-consuming temp token read followed by a
// fresh challenge for the resolved identity. Repeating the call with a valid
// temp token simply re-rolls the challenge, superseding the previous one;
// this is the retry path for clients that missed the response.
func (s *AuthService) RequestChallenge(ctx context.Context, tempToken string) (string, error) {
	email, err := s.kv.Get(ctx, core.TemporaryTokenKey(tempToken))
	if err != nil {
		return "", core.ErrInvalidTemporaryToken
	}

	challenge, err := core.RandomToken(core.TokenBytes)
	if err != nil {
		return "", err
	}

	if err := s.kv.Set(ctx, core.ChallengeKey(email), challenge, s.challengeTTL); err != nil {
		return "", err
	}

	return challenge, nil
}

// CompleteLogin is step 3. The temp token is consumed first, before any
// other check: whatever happens next, it cannot be replayed, so an attacker
// gets exactly one attempt per issued temp token. The challenge is likewise
// consumed before comparison.
func (s *AuthService) CompleteLogin(ctx context.Context, tempToken, challenge string, signature []byte) (string, error) {
	email, err := s.kv.TakeAndDelete(ctx, core.TemporaryTokenKey(tempToken))
	if err != nil {
		return "", core.ErrInvalidTemporaryToken
	}

	// The account may have been deleted since step 1
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", core.ErrInvalidCredentials
	}

	stored, err := s.kv.TakeAndDelete(ctx, core.ChallengeKey(email))
	if err != nil || stored != challenge {
		return "", core.ErrInvalidChallenge
	}

	if !s.verifier.Verify([]byte(challenge), signature, account.PublicKey) {
		return "", core.ErrInvalidSignature
	}

	credential, err := s.tokens.Issue(account.Email, account.Role, s.credentialTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue credential: %w", err)
	}

	// The credential is already issued; a publish failure is not fatal
	if err := s.events.PublishLogin(ctx, email, "mfa"); err != nil {
		s.logger.Warn("failed to publish login event", "email", email, "error", err)
	}

	return credential, nil
}

// ValidateCredential verifies a bearer credential and returns the identity
// it carries.
func (s *AuthService) ValidateCredential(credential string) (*core.Identity, error) {
	return s.tokens.Validate(credential)
}

// Account resolves a validated identity back to its account record.
func (s *AuthService) Account(ctx context.Context, email string) (*core.Account, error) {
	return s.accounts.FindByEmail(ctx, email)
}
