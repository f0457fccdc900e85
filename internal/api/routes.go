package api

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"omanga-backend-go/internal/core"
	"omanga-backend-go/internal/middleware"
)

// SetupRoutes configures all application routes. Global middleware (logging,
// recovery, CORS) is expected to be applied to the router beforehand.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	firebaseAuthClient *auth.Client,
	authService core.AuthService,
	packageService core.PackageService,
) {
	authMW := middleware.AuthMiddleware(firebaseAuthClient, logger)

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(authService)
	packageHandler := NewPackageHandler(packageService)

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.SignUp)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/reset-password", authHandler.ResetPassword)
			authGroup.POST("/logout", authMW, authHandler.Logout)
		}

		usersGroup := apiV1.Group("/users", authMW)
		{
			usersGroup.GET("/me", userHandler.GetProfile)
			usersGroup.PATCH("/me", userHandler.UpdateProfile)
			usersGroup.PUT("/me/packages", userHandler.SelectPackages)
		}

		// Catalog browsing happens before sign-up completes, so it is public.
		apiV1.GET("/packages", packageHandler.ListPackages)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured", zap.String("base", "/api/v1"))
}
