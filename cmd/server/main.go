package main

import (
	"context"   // Startup and shutdown deadlines
	"errors"    // Error inspection
	"net/http"  // HTTP server
	"os"        // Process streams
	"os/signal" // Shutdown signals
	"syscall"   // SIGTERM
	"time"      // Shutdown timeout

	"account_service/internal/api"        // Custom package for API handlers
	"account_service/internal/config"     // Custom package for configuration
	"account_service/internal/db"         // Database connection and migration
	"account_service/internal/logging"    // Logger setup
	"account_service/internal/middleware" // CORS wrapper
	"account_service/internal/service"    // Account services
	"account_service/internal/store"      // Token blacklist backends
	"account_service/internal/utils"      // Token service

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	logger := logging.Setup(os.Stdout, cfg.LogLevel, cfg.IsProd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg)
	if err != nil {
		logger.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}
	if err := db.SeedAdmin(ctx, gdb, cfg.AdminLogin, cfg.AdminPassword); err != nil {
		logger.Fatalf("failed to seed admin: %v", err)
	}

	redisClient := newRedis(ctx, cfg, logger)
	var blacklist store.Blacklist = store.NewMemoryBlacklist()
	if redisClient != nil {
		blacklist = store.NewRedisBlacklist(redisClient)
		defer redisClient.Close()
	}

	tokens := utils.NewTokenService(cfg.JWTSecret)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := api.NewRouter(api.Deps{
		DB:                gdb,
		Redis:             redisClient,
		Logger:            logger,
		Auth:              service.NewAuthService(gdb, tokens, blacklist),
		Users:             service.NewUserService(gdb),
		Profiles:          service.NewProfileService(gdb),
		Addresses:         service.NewAddressService(gdb),
		Orders:            service.NewOrderService(gdb),
		LoginRateLimitRPM: cfg.LoginRateLimitRPM,
		TrustedProxies:    []string{"127.0.0.1"},
	})
	if err != nil {
		logger.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           middleware.CORS(cfg.CORSOrigins, router),
		ReadTimeout:       cfg.ServerReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newRedis connects to Redis when REDIS_ADDR is set. A nil client keeps
// revoked tokens in memory.
func newRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, revoked tokens are kept in memory")
		return nil
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Fatalf("failed to connect to Redis: %v", err)
	}
	return redisClient
}
