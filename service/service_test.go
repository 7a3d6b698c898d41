package service

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/layer-3/cerberus/adapters/accounts"
	"github.com/layer-3/cerberus/adapters/hasher"
	"github.com/layer-3/cerberus/adapters/sessions"
	"github.com/layer-3/cerberus/adapters/store"
	"github.com/layer-3/cerberus/adapters/tokenizer"
	"github.com/layer-3/cerberus/internal/rsasig"
)

// testClock is a controllable time source shared by the stores under test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// stubPublisher records published events instead of sending them anywhere.
type stubPublisher struct {
	mu      sync.Mutex
	logins  []string
	logouts []string
	fail    bool
}

func (p *stubPublisher) PublishLogin(ctx context.Context, email, method string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return context.DeadlineExceeded
	}
	p.logins = append(p.logins, email+"/"+method)
	return nil
}

func (p *stubPublisher) PublishLogout(ctx context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return context.DeadlineExceeded
	}
	p.logouts = append(p.logouts, email)
	return nil
}

// recordingHasher delegates to bcrypt and remembers the digests handed to
// Matches, so tests can check what the miss paths actually compare against.
type recordingHasher struct {
	inner *hasher.Bcrypt

	mu      sync.Mutex
	digests []string
}

func (h *recordingHasher) Hash(raw string) (string, error) {
	return h.inner.Hash(raw)
}

func (h *recordingHasher) Matches(raw, digest string) bool {
	h.mu.Lock()
	h.digests = append(h.digests, digest)
	h.mu.Unlock()
	return h.inner.Matches(raw, digest)
}

func (h *recordingHasher) recorded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.digests...)
}

type fixture struct {
	clock    *testClock
	accounts *accounts.MemoryStore
	kv       *store.MemoryStore
	sessions *sessions.MemoryStore
	events   *stubPublisher
	hasher   *recordingHasher
	auth     *AuthService
	session  *SessionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := newTestClock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accountStore := accounts.NewMemoryStore()
	kv := store.NewMemoryStore()
	kv.SetClock(clock.Now)

	tk := tokenizer.NewJWTTokenizer([]byte("test-secret"), "cerberus")
	tk.SetClock(clock.Now)

	sessionStore := sessions.NewMemoryStore()
	events := &stubPublisher{}
	ph := &recordingHasher{inner: hasher.NewBcrypt()}

	auth := NewAuthService(
		accountStore, kv, ph, rsasig.NewVerifier(), tk, events,
		logger, time.Hour,
	)

	session := NewSessionService(
		accountStore, sessionStore, ph, events,
		logger, 24*time.Hour,
	)
	session.SetClock(clock.Now)

	return &fixture{
		clock:    clock,
		accounts: accountStore,
		kv:       kv,
		sessions: sessionStore,
		events:   events,
		hasher:   ph,
		auth:     auth,
		session:  session,
	}
}

// keyPair generates an RSA key pair and returns the private key together
// with the SPKI encoding of its public half.
func keyPair(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	spki, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, spki
}

func signChallenge(t *testing.T, key *rsa.PrivateKey, challenge string) []byte {
	t.Helper()
	digest := sha256.Sum256([]byte(challenge))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)
	return sig
}
