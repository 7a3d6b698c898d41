package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/service"
)

const (
	identityKey     = "identity"
	sessionTokenKey = "sessionToken"
)

// CredentialMiddleware validates bearer credentials issued by the MFA flow.
// The account is re-resolved on every request so a deleted account loses
// access immediately, credential expiry notwithstanding.
func CredentialMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		identity, err := auth.ValidateCredential(token)
		if err != nil {
			if errors.Is(err, core.ErrCredentialExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Credential expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credential"})
			}
			return
		}

		account, err := auth.Account(c.Request.Context(), identity.Email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credential"})
			return
		}

		c.Set(identityKey, &core.Identity{Email: account.Email, Role: account.Role})
		c.Next()
	}
}

// SessionMiddleware authenticates requests carrying an opaque session token
// from the fallback path.
func SessionMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		identity, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrSessionExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			}
			return
		}

		c.Set(identityKey, identity)
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// RequireRole guards a route group behind a role check. Must run after one
// of the authentication middlewares.
func RequireRole(role core.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok || identity.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(auth, "Bearer ")
	return token, token != ""
}

func identityFrom(c *gin.Context) (*core.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*core.Identity)
	return identity, ok
}

func sessionTokenFrom(c *gin.Context) string {
	v, exists := c.Get(sessionTokenKey)
	if !exists {
		return ""
	}
	token, _ := v.(string)
	return token
}
