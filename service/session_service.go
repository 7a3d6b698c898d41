package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/ports"
)

// SessionService is the password-only fallback path for accounts without a
// registered public key. It issues durable opaque tokens instead of signed
// credentials; the MFA flow in AuthService is the primary scheme.
type SessionService struct {
	accounts ports.AccountStore
	sessions ports.SessionStore
	hasher   ports.PasswordHasher
	events   ports.EventPublisher
	logger   *slog.Logger

	sessionTTL time.Duration
	now        func() time.Time

	// dummyDigest keeps the unknown-identity path as expensive as the known
	// one; see the matching field on AuthService.
	dummyDigest string
}

// NewSessionService creates a new session service
func NewSessionService(
	accounts ports.AccountStore,
	sessions ports.SessionStore,
	hasher ports.PasswordHasher,
	events ports.EventPublisher,
	logger *slog.Logger,
	sessionTTL time.Duration,
) *SessionService {
	dummyDigest, _ := hasher.Hash("cerberus.dummy.password")
	return &SessionService{
		accounts:    accounts,
		sessions:    sessions,
		hasher:      hasher,
		events:      events,
		logger:      logger,
		sessionTTL:  sessionTTL,
		now:         time.Now,
		dummyDigest: dummyDigest,
	}
}

// SetClock overrides the service's time source, for tests.
func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

// Login checks the password and issues a new session record. An account may
// hold many live sessions at once, one per device.
func (s *SessionService) Login(ctx context.Context, email, password string) (*core.SessionRecord, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		// Never-matching comparison keeps misses and hits at the same cost.
		s.hasher.Matches(password, s.dummyDigest)
		return nil, core.ErrInvalidCredentials
	}

	if !s.hasher.Matches(password, account.PasswordHash) {
		return nil, core.ErrInvalidCredentials
	}

	token, err := core.RandomToken(core.TokenBytes)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record := &core.SessionRecord{
		Token:     token,
		Email:     account.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessions.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.events.PublishLogin(ctx, email, "session"); err != nil {
		s.logger.Warn("failed to publish login event", "email", email, "error", err)
	}

	return record, nil
}

// Resolve looks up a session token and returns the owning identity. Expired
// records are reported as expired but left in place; the sweep owns their
// removal.
func (s *SessionService) Resolve(ctx context.Context, token string) (*core.Identity, error) {
	record, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if record.ExpiredAt(s.now()) {
		return nil, core.ErrSessionExpired
	}

	account, err := s.accounts.FindByEmail(ctx, record.Email)
	if err != nil {
		return nil, core.ErrSessionNotFound
	}

	return &core.Identity{Email: account.Email, Role: account.Role}, nil
}

// Revoke deletes a session record, but only when it belongs to the
// requesting account. A mismatch is Forbidden and leaves the record intact.
func (s *SessionService) Revoke(ctx context.Context, email, token string) error {
	record, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		return err
	}

	if record.Email != email {
		return core.ErrForbidden
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}

	if err := s.events.PublishLogout(ctx, email); err != nil {
		s.logger.Warn("failed to publish logout event", "email", email, "error", err)
	}

	return nil
}
