package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/domain"          // Importing domain models
	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/services/ledger" // Ledger service
	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/services/lookup" // Transaction lookup service
	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/utils"           // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/google/uuid"        // Generated fund references
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Decimal money type

	"github.com/sirupsen/logrus" // Logging library
)

// FundRequest represents a top-up or deduction request
type FundRequest struct {
	Amount        decimal.Decimal `json:"amount"`         // Amount to credit or debit, two decimal places
	ReferenceID   string          `json:"reference_id"`   // Optional external correlation identifier
	ReferenceType string          `json:"reference_type"` // TOPUP, PURCHASE, REFUND or ADJUSTMENT
	Description   string          `json:"description"`    // Optional free text
}

// FundResponse represents the outcome of a balance mutation
type FundResponse struct {
	Success       bool            `json:"success"`        // Whether the mutation committed
	Balance       decimal.Decimal `json:"balance"`        // Balance after the mutation
	Currency      string          `json:"currency"`       // Wallet currency
	Message       string          `json:"message"`        // Human-readable outcome
	TransactionID string          `json:"transaction_id"` // Reference the mutation was recorded under
}

// BalanceResponse represents a read-only balance query result
type BalanceResponse struct {
	Balance  decimal.Decimal `json:"balance"`  // Current balance, zero for users without a wallet
	Currency string          `json:"currency"` // Wallet currency
}

// userIDFromContext extracts the verified user ID set by the JWT middleware
func userIDFromContext(c *gin.Context) (int64, bool) {
	v, exists := c.Get("userID") // Get userID from context
	if !exists {
		return 0, false
	}
	id, ok := v.(int64) // Stored as int64 by the middleware
	return id, ok
}

// CreateWalletHandler returns the caller's wallet, creating an empty one on
// first access. Repeated calls are idempotent.
func CreateWalletHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		wallet, err := svc.GetOrCreateWallet(c.Request.Context(), userID)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to get or create wallet") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get or create wallet"})
			return
		}
		// Return the wallet, whether it existed before or was just created
		c.JSON(http.StatusOK, gin.H{"wallet": wallet})
	}
}

// GetBalanceHandler returns the caller's balance without creating a wallet
func GetBalanceHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()               // Context for Redis operations
		cacheKey := utils.BalanceCacheKey(userID) // Cache key for the balance
		var cachedResp BalanceResponse
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cachedResp) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"balance": cachedResp.Balance, "currency": cachedResp.Currency, "cached": true})
			return
		}
		balance, err := svc.BalanceOf(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read balance"})
			return
		}
		resp := BalanceResponse{Balance: balance, Currency: domain.DefaultCurrency}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)                                      // Cache the balance for 60 seconds
		c.JSON(http.StatusOK, gin.H{"balance": resp.Balance, "currency": resp.Currency, "cached": false}) // Return balance
	}
}

// TopUpHandler credits the caller's wallet
func TopUpHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return fundHandler(svc, rdb, domain.ReferenceTopup, "Top-up successful")
}

// DeductHandler debits the caller's wallet
func DeductHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return fundHandler(svc, rdb, domain.ReferencePurchase, "Deduction successful")
}

// fundHandler is the shared request flow for top-up and deduction. The default
// reference type decides the direction: TOPUP-family requests credit, the rest
// debit.
func fundHandler(svc *ledger.Service, rdb *redis.Client, defaultRefType, successMessage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req FundRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.ReferenceType == "" {
			req.ReferenceType = defaultRefType // TOPUP for credits, PURCHASE for debits
		}
		if req.ReferenceID == "" {
			req.ReferenceID = uuid.NewString() // Generated correlation reference
		}
		var wallet *domain.Wallet
		var err error
		if defaultRefType == domain.ReferenceTopup {
			wallet, err = svc.Credit(c.Request.Context(), userID, req.Amount, req.ReferenceType, req.ReferenceID, req.Description)
		} else {
			wallet, err = svc.Debit(c.Request.Context(), userID, req.Amount, req.ReferenceType, req.ReferenceID, req.Description)
		}
		if err != nil {
			respondLedgerError(c, userID, err)
			return
		}
		// Invalidate cached balance and history for this user
		invalidateWalletCaches(rdb, userID)
		// Return success response
		c.JSON(http.StatusOK, FundResponse{
			Success:       true,            // Mutation committed
			Balance:       wallet.Balance,  // Balance after the mutation
			Currency:      wallet.Currency, // Wallet currency
			Message:       successMessage,  // Outcome description
			TransactionID: req.ReferenceID, // Reference the entry was recorded under
		})
	}
}

// respondLedgerError maps the ledger error taxonomy onto HTTP statuses.
// Errors are matched by type, never by message text.
func respondLedgerError(c *gin.Context, userID int64, err error) {
	var insufficient *ledger.InsufficientBalanceError
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive with at most two decimal places"})
	case errors.Is(err, ledger.ErrInvalidReferenceType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown reference type"})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Insufficient balance",
			"available": insufficient.Available, // Balance the debit was checked against
		})
	case errors.Is(err, ledger.ErrConcurrencyExhausted):
		// Retryable: the wallet was under heavy concurrent writes
		c.JSON(http.StatusConflict, gin.H{"error": "Wallet busy, please retry"})
	default:
		// Log the error with context
		logrus.WithFields(logrus.Fields{
			"user_id": userID,      // User ID
			"error":   err.Error(), // Error message
		}).Error("Wallet mutation failed") // Log failure
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Wallet operation failed"})
	}
}

// invalidateWalletCaches drops the cached balance and the commonly cached
// history pages for a user after a mutation
func invalidateWalletCaches(rdb *redis.Client, userID int64) {
	ctx := context.Background()                                    // Context for Redis operations
	_ = utils.DeleteCache(ctx, rdb, utils.BalanceCacheKey(userID)) // Invalidate balance cache
	// Invalidate the cached history pages (simple version: the common limits)
	for _, limit := range []int{10, 20, 50, 100} {
		_ = utils.DeleteCache(ctx, rdb, utils.HistoryCacheKey(userID, limit))
	}
}

// HistoryHandler returns the caller's ledger entries, most recent first
func HistoryHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		limit := ledger.DefaultHistoryLimit // Default page size
		// If limit exists in query
		if l := c.Query("limit"); l != "" {
			// Convert limit to integer
			if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= ledger.MaxHistoryLimit {
				limit = v // Set limit if valid
			}
		}
		ctx := context.Background()                      // Context for Redis operations
		cacheKey := utils.HistoryCacheKey(userID, limit) // Cache key for this page
		var cachedEntries []domain.LedgerEntry
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cachedEntries) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"entries": cachedEntries, "limit": limit, "cached": true})
			return
		}
		entries, err := svc.History(c.Request.Context(), userID, limit)
		if err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, entries, 60*time.Second)                   // Cache the page for 60 seconds
		c.JSON(http.StatusOK, gin.H{"entries": entries, "limit": limit, "cached": false}) // Return history
	}
}

// LastTransactionHandler returns the caller's latest successful checkout
// transaction from the reporting table
func LastTransactionHandler(svc *lookup.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                       // Context for Redis operations
		cacheKey := utils.LastTransactionCacheKey(userID) // Cache key for the lookup
		var cached lookup.LastTransaction
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"transaction": cached, "cached": true})
			return
		}
		last, err := svc.LatestSuccessfulForUser(c.Request.Context(), userID)
		if errors.Is(err, lookup.ErrNoTransactions) {
			// No successful checkout yet for this user
			c.JSON(http.StatusNotFound, gin.H{"error": "No successful transactions"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch last transaction"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, last, 60*time.Second)       // Cache the lookup for 60 seconds
		c.JSON(http.StatusOK, gin.H{"transaction": last, "cached": false}) // Return the transaction
	}
}
