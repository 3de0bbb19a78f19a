package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // redis.Nil detection
	"strconv"       // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

func accountVersionKey(userID uint) string {
	return "account:user:" + strconv.FormatUint(uint64(userID), 10) + ":version"
}

// AccountCacheKey is the cache key of a user's account summary at a given version
func AccountCacheKey(userID uint, version int64) string {
	return "account:user:" + strconv.FormatUint(uint64(userID), 10) + ":v" + strconv.FormatInt(version, 10)
}

// AccountCacheVersion returns the current summary version of a user, 0 if it was never invalidated.
// Read it before loading the summary and cache under that version.
func AccountCacheVersion(ctx context.Context, rdb *redis.Client, userID uint) (int64, error) {
	v, err := rdb.Get(ctx, accountVersionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil // Never invalidated
	}
	return v, err
}

// InvalidateAccountCache moves a user to a new summary version and drops the previous entry.
// A summary computed before the bump can only land under the old key, which is never read again.
func InvalidateAccountCache(ctx context.Context, rdb *redis.Client, userID uint) error {
	v, err := rdb.Incr(ctx, accountVersionKey(userID)).Result()
	if err != nil {
		return err
	}
	return DeleteCache(ctx, rdb, AccountCacheKey(userID, v-1))
}

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	return rdb.Del(ctx, keys...).Err()
}
