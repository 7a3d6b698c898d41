package http

import (
	"github.com/gin-gonic/gin"

	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(auth *service.AuthService, sessions *service.SessionService) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(auth, sessions)

	// MFA flow and registration
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/challenge", handlers.Challenge)
		authGroup.POST("/authenticate", handlers.Authenticate)
	}

	// Password-only fallback path
	sessionGroup := router.Group("/auth/session")
	{
		sessionGroup.POST("/login", handlers.SessionLogin)
		sessionGroup.POST("/logout", SessionMiddleware(sessions), handlers.SessionLogout)
	}

	// Routes protected by a bearer credential
	api := router.Group("/api")
	api.Use(CredentialMiddleware(auth))
	{
		api.GET("/me", handlers.Me)

		admin := api.Group("/admin")
		admin.Use(RequireRole(core.RoleAdmin))
		{
			admin.GET("/authorize", handlers.Authorize)
		}
	}

	return router
}
