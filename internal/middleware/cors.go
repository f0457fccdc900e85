package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"omanga-backend-go/internal/config"
)

// CORSMiddleware creates a Gin middleware for CORS configuration.
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	clientURL := appConfig.ClientURL
	if clientURL == "" {
		clientURL = "http://localhost:3000" // default for local development
	}

	return cors.New(cors.Config{
		AllowOrigins:     []string{clientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
