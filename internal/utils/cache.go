package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Cache key construction
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache keys for wallet responses, one namespace per read path
func BalanceCacheKey(userID int64) string {
	return "wallet:balance:user:" + strconv.FormatInt(userID, 10) // Balance response key
}

// HistoryCacheKey builds the key for one page of a user's ledger history
func HistoryCacheKey(userID int64, limit int) string {
	return "ledger:history:user:" + strconv.FormatInt(userID, 10) + ":limit:" + strconv.Itoa(limit)
}

// LastTransactionCacheKey builds the key for the reporting read path
func LastTransactionCacheKey(userID int64) string {
	return "lookup:lasttx:user:" + strconv.FormatInt(userID, 10)
}

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}
