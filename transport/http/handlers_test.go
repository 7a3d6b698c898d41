package http

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/cerberus/adapters/accounts"
	"github.com/layer-3/cerberus/adapters/hasher"
	"github.com/layer-3/cerberus/adapters/sessions"
	"github.com/layer-3/cerberus/adapters/store"
	"github.com/layer-3/cerberus/adapters/tokenizer"
	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/internal/rsasig"
	"github.com/layer-3/cerberus/service"
)

type noopPublisher struct{}

func (noopPublisher) PublishLogin(ctx context.Context, email, method string) error { return nil }
func (noopPublisher) PublishLogout(ctx context.Context, email string) error        { return nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accountStore := accounts.NewMemoryStore()
	passwordHasher := hasher.NewBcrypt()

	auth := service.NewAuthService(
		accountStore, store.NewMemoryStore(), passwordHasher, rsasig.NewVerifier(),
		tokenizer.NewJWTTokenizer([]byte("test-secret"), "cerberus"), noopPublisher{},
		logger, time.Hour,
	)
	session := service.NewSessionService(
		accountStore, sessions.NewMemoryStore(), passwordHasher, noopPublisher{},
		logger, 24*time.Hour,
	)

	return SetupRouter(auth, session)
}

func doJSON(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func registerWithKey(t *testing.T, router *gin.Engine, email, password string) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	spki, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email":      email,
		"password":   password,
		"public_key": base64.StdEncoding.EncodeToString(spki),
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return key
}

func TestRegisterDuplicateConflict(t *testing.T) {
	router := newTestRouter(t)
	registerWithKey(t, router, "a@x.com", "p1")

	w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email":    "a@x.com",
		"password": "p2",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMFAFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	key := registerWithKey(t, router, "a@x.com", "p1")

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email": "a@x.com", "password": "p1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tempToken := decode(t, w)["temporary_token"].(string)
	require.NotEmpty(t, tempToken)

	w = doJSON(router, http.MethodPost, "/auth/challenge", gin.H{
		"temporary_token": tempToken,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	challenge := decode(t, w)["challenge"].(string)
	require.NotEmpty(t, challenge)

	digest := sha256.Sum256([]byte(challenge))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)

	w = doJSON(router, http.MethodPost, "/auth/authenticate", gin.H{
		"temporary_token": tempToken,
		"challenge":       challenge,
		"signature":       base64.StdEncoding.EncodeToString(signature),
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	credential := body["token"].(string)
	assert.Equal(t, "Bearer", body["token_type"])

	// The credential works against the protected surface
	w = doJSON(router, http.MethodGet, "/api/me", nil, map[string]string{
		"Authorization": "Bearer " + credential,
	})
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "a@x.com", me["email"])
	assert.Equal(t, "USER", me["role"])

	// Replaying step 3 fails: the temp token was consumed
	w = doJSON(router, http.MethodPost, "/auth/authenticate", gin.H{
		"temporary_token": tempToken,
		"challenge":       challenge,
		"signature":       base64.StdEncoding.EncodeToString(signature),
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWithoutKeyForbidden(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email": "nokey@x.com", "password": "p1",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email": "nokey@x.com", "password": "p1",
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProtectedRoutesRejectBadBearer(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/me", nil, map[string]string{
		"Authorization": "Bearer garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRouteRequiresRole(t *testing.T) {
	router := newTestRouter(t)
	key := registerWithKey(t, router, "a@x.com", "p1")

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email": "a@x.com", "password": "p1",
	}, nil)
	tempToken := decode(t, w)["temporary_token"].(string)
	w = doJSON(router, http.MethodPost, "/auth/challenge", gin.H{"temporary_token": tempToken}, nil)
	challenge := decode(t, w)["challenge"].(string)
	digest := sha256.Sum256([]byte(challenge))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)
	w = doJSON(router, http.MethodPost, "/auth/authenticate", gin.H{
		"temporary_token": tempToken,
		"challenge":       challenge,
		"signature":       base64.StdEncoding.EncodeToString(signature),
	}, nil)
	credential := decode(t, w)["token"].(string)

	// Registered accounts get USER, which the admin guard rejects
	w = doJSON(router, http.MethodGet, "/api/admin/authorize", nil, map[string]string{
		"Authorization": "Bearer " + credential,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExpiredBearerReportedAsExpired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Now()
	clock := func() time.Time { return now }

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accountStore := accounts.NewMemoryStore()
	passwordHasher := hasher.NewBcrypt()

	kv := store.NewMemoryStore()
	kv.SetClock(clock)
	tk := tokenizer.NewJWTTokenizer([]byte("test-secret"), "cerberus")
	tk.SetClock(clock)

	auth := service.NewAuthService(
		accountStore, kv, passwordHasher, rsasig.NewVerifier(), tk, noopPublisher{},
		logger, time.Hour,
	)
	session := service.NewSessionService(
		accountStore, sessions.NewMemoryStore(), passwordHasher, noopPublisher{},
		logger, 24*time.Hour,
	)
	session.SetClock(clock)
	router := SetupRouter(auth, session)

	w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email": "a@x.com", "password": "p1",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	credential, err := tk.Issue("a@x.com", core.RoleUser, time.Hour)
	require.NoError(t, err)

	w = doJSON(router, http.MethodPost, "/auth/session/login", gin.H{
		"email": "a@x.com", "password": "p1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sessionToken := decode(t, w)["session_token"].(string)

	now = now.Add(25 * time.Hour)

	// Both bearer kinds distinguish expired from invalid
	w = doJSON(router, http.MethodGet, "/api/me", nil, map[string]string{
		"Authorization": "Bearer " + credential,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Credential expired", decode(t, w)["error"])

	w = doJSON(router, http.MethodPost, "/auth/session/logout", nil, map[string]string{
		"Authorization": "Bearer " + sessionToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Session expired", decode(t, w)["error"])
}

func TestSessionPathOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email": "a@x.com", "password": "p1",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email": "b@x.com", "password": "p2",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/session/login", gin.H{
		"email": "a@x.com", "password": "p1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	aToken := decode(t, w)["session_token"].(string)

	w = doJSON(router, http.MethodPost, "/auth/session/login", gin.H{
		"email": "b@x.com", "password": "p2",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	bToken := decode(t, w)["session_token"].(string)

	// b cannot revoke a's session
	w = doJSON(router, http.MethodPost, "/auth/session/logout", gin.H{"token": aToken}, map[string]string{
		"Authorization": "Bearer " + bToken,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// a revokes their own session
	w = doJSON(router, http.MethodPost, "/auth/session/logout", nil, map[string]string{
		"Authorization": "Bearer " + aToken,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// The revoked token no longer authenticates
	w = doJSON(router, http.MethodPost, "/auth/session/logout", nil, map[string]string{
		"Authorization": "Bearer " + aToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
