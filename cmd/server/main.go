package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/api"             // Custom package for API handlers
	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/config"          // Custom package for configuration
	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/middleware"      // Custom package for middleware
	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/repositories"    // Wallet storage
	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/services/ledger" // Balance-mutation engine
	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/services/lookup" // Checkout reporting read path

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Wire the wallet store and the services on top of it
	walletRepo := repositories.NewGormWalletRepository(db)               // Durable wallet + ledger store
	ledgerService := ledger.NewService(walletRepo, cfg.LedgerMaxRetries) // The only writer of balances
	lookupService := lookup.NewService(db)                               // Checkout reporting read path

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/user", api.RegisterHandler(db))            // Registration endpoint
	r.GET("/user", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet")
	// Protect wallet routes with JWT middleware
	walletGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	walletGroup.POST("", api.CreateWalletHandler(ledgerService))                                 // Get-or-create wallet endpoint
	walletGroup.GET("/balance", api.GetBalanceHandler(ledgerService, redisClient))               // Balance endpoint
	walletGroup.POST("/topup", api.TopUpHandler(ledgerService, redisClient))                     // Credit endpoint
	walletGroup.POST("/deduct", api.DeductHandler(ledgerService, redisClient))                   // Debit endpoint
	walletGroup.GET("/transactions", api.HistoryHandler(ledgerService, redisClient))             // Ledger history endpoint
	walletGroup.GET("/last-transaction", api.LastTransactionHandler(lookupService, redisClient)) // Checkout lookup endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	// Protect admin routes with JWT and AdminOnly middleware
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", api.ListUsersHandler(db, redisClient))     // List users endpoint
	adminGroup.GET("/entries", api.ListEntriesHandler(db, redisClient)) // List ledger entries endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
