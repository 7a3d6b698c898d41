package http

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	auth     *service.AuthService
	sessions *service.SessionService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(auth *service.AuthService, sessions *service.SessionService) *AuthHandlers {
	return &AuthHandlers{
		auth:     auth,
		sessions: sessions,
	}
}

// Register handles account registration. The public key, when present, is
// the base64 of an SPKI-encoded RSA key.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		PublicKey string `json:"public_key"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var publicKey []byte
	if req.PublicKey != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.PublicKey)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid public key encoding"})
			return
		}
		publicKey = decoded
	}

	if err := h.auth.Register(c.Request.Context(), req.Email, req.Password, publicKey); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered"})
}

// Login handles MFA step 1: password check, temporary token out
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, err := h.auth.BeginLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"temporary_token": token})
}

// Challenge handles MFA step 2: temporary token in, challenge out
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		TemporaryToken string `json:"temporary_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	challenge, err := h.auth.RequestChallenge(c.Request.Context(), req.TemporaryToken)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge": challenge})
}

// Authenticate handles MFA step 3: signed challenge in, bearer credential out
func (h *AuthHandlers) Authenticate(c *gin.Context) {
	var req struct {
		TemporaryToken string `json:"temporary_token" binding:"required"`
		Challenge      string `json:"challenge" binding:"required"`
		Signature      string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		// Same rejection as a wrong signature, no oracle for malformed input
		abortWithError(c, core.ErrInvalidSignature)
		return
	}

	credential, err := h.auth.CompleteLogin(c.Request.Context(), req.TemporaryToken, req.Challenge, signature)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      credential,
		"token_type": "Bearer",
	})
}

// Me returns the authenticated caller's identity
func (h *AuthHandlers) Me(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email": identity.Email,
		"role":  identity.Role,
	})
}

// Authorize confirms the caller passed the admin guard
func (h *AuthHandlers) Authorize(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorized": true,
		"email":      identity.Email,
	})
}

// SessionLogin handles the password-only fallback path
func (h *AuthHandlers) SessionLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	record, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_token": record.Token,
		"expires_at":    record.ExpiresAt,
	})
}

// SessionLogout revokes a session. Without a body it revokes the caller's
// own session; with one it revokes the named token, which must belong to the
// caller.
func (h *AuthHandlers) SessionLogout(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	token := sessionTokenFrom(c)
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err == nil && req.Token != "" {
		token = req.Token
	}

	if err := h.sessions.Revoke(c.Request.Context(), identity.Email, token); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// abortWithError maps service errors to HTTP responses. Internal failures
// collapse to a generic message so store errors never leak detail.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Account already exists"})
	case errors.Is(err, core.ErrMFANotConfigured):
		c.JSON(http.StatusForbidden, gin.H{"error": "MFA not configured for account"})
	case errors.Is(err, core.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Session does not belong to account"})
	case errors.Is(err, core.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, core.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, core.ErrInvalidTemporaryToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired temporary token"})
	case errors.Is(err, core.ErrInvalidChallenge):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired challenge"})
	case errors.Is(err, core.ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
	case errors.Is(err, core.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
	case errors.Is(err, core.ErrCredentialExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credential expired"})
	case errors.Is(err, core.ErrCredentialInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credential"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
	}
}
