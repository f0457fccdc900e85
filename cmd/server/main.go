package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"omanga-backend-go/internal/api"
	"omanga-backend-go/internal/config"
	"omanga-backend-go/internal/core"
	"omanga-backend-go/internal/db"
	"omanga-backend-go/internal/identity"
	"omanga-backend-go/internal/middleware"
	"omanga-backend-go/pkg/cache"
	"omanga-backend-go/pkg/mailer"
	"omanga-backend-go/pkg/messagequeue"
)

func main() {
	// Load .env in development. In production, environment variables are set directly.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: no .env file loaded:", err)
		}
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded")

	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	clients, err := db.InitFirestore(initCtx, appConfig)
	if err != nil {
		zapLogger.Fatal("Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Firestore.Close()
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized")

	userRepo := db.NewFirestoreUserRepository(clients.Firestore)
	sessionRepo := db.NewFirestoreSessionRepository(clients.Firestore)
	packageRepo := db.NewFirestorePackageRepository(clients.Firestore)

	provider := identity.NewFirebaseProvider(clients.Auth, appConfig.FirebaseWebAPIKey)

	// Optional infrastructure: each piece is skipped with a warning when unconfigured.
	var catalogCache cache.Cache
	if appConfig.RedisAddress != "" {
		catalogCache, err = cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddress,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		zapLogger.Info("Redis cache connected", zap.String("address", appConfig.RedisAddress))
	} else {
		zapLogger.Warn("REDIS_ADDRESS not set, catalog caching disabled")
	}

	var events core.EventPublisher
	if appConfig.RabbitMQURL != "" {
		mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL})
		if err != nil {
			zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mq.Close()
		events = messagequeue.NewEventPublisher(mq, appConfig.RabbitMQQueue)
		zapLogger.Info("RabbitMQ event publishing enabled", zap.String("queue", appConfig.RabbitMQQueue))
	} else {
		zapLogger.Warn("RABBITMQ_URL not set, auth event publishing disabled")
	}

	var mail core.Mailer
	if appConfig.SMTPHost != "" {
		smtpMailer, err := mailer.NewSMTPMailer(mailer.SMTPMailerConfig{
			Host:     appConfig.SMTPHost,
			Port:     appConfig.SMTPPort,
			Username: appConfig.SMTPUsername,
			Password: appConfig.SMTPPassword,
			Sender:   appConfig.SMTPSender,
		})
		if err != nil {
			zapLogger.Fatal("Failed to configure SMTP mailer", zap.Error(err))
		}
		mail = smtpMailer
		zapLogger.Info("SMTP mailer configured", zap.String("host", appConfig.SMTPHost))
	} else {
		zapLogger.Warn("SMTP_HOST not set, transactional email disabled")
	}

	authService := core.NewAuthService(provider, userRepo, sessionRepo, mail, events, zapLogger)
	packageService := core.NewPackageService(packageRepo, catalogCache, zapLogger)
	zapLogger.Info("Core services initialized")

	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	api.SetupRoutes(router, zapLogger, clients.Auth, authService, packageService)

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully")
}
