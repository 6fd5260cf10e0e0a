package main

import (
	"context"                     // context package is needed for Redis operations
	"crm_system/internal/api"     // Custom package for API handlers
	"crm_system/internal/auth"    // Custom package for credentials
	"crm_system/internal/config"  // Custom package for configuration
	"crm_system/internal/crm"     // Custom package for collections and dashboard
	"crm_system/internal/session" // Custom package for sessions
	"crm_system/internal/storage" // Custom package for JSON persistence
	"crm_system/internal/utils"   // Custom package for caching

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set") // Tokens cannot be signed without it
	}

	// Setup the data root and credential store
	store := storage.New(cfg.DataDir)
	if err := store.Init(); err != nil {
		logrus.Fatalf("failed to prepare data directory: %v", err)
	}

	// Setup Redis cache if configured, otherwise keep everything in process
	var cache utils.Cache = utils.NewMemoryCache()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		cache = utils.NewRedisCache(redisClient)
		logrus.WithField("addr", cfg.RedisAddr).Info("Using Redis for sessions and cache")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Deps{
		Auth:       auth.NewService(store, cfg.BcryptCost),
		Sessions:   session.NewManager(store, cache, cfg.SessionTTL),
		CRM:        crm.NewService(store),
		Cache:      cache,
		JWTSecret:  cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"port":     cfg.AppPort, // Listening port
		"data_dir": cfg.DataDir, // Data root
	}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
