package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/storefoundry/go-storefront-platform/shared/models"
)

var (
	RedisClient *redis.Client
	ctx         = context.Background()
)

// CartTTL is how long an untouched storefront cart survives in Redis.
// Carts are client-side staging, retained across visits per store.
const CartTTL = 30 * 24 * time.Hour

// InitRedis initializes the Redis client
func InitRedis() error {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}

	redisPort := os.Getenv("REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}

	addr := fmt.Sprintf("%s:%s", redisHost, redisPort)

	RedisClient = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return nil
}

// CacheSet stores a value in Redis with expiration
func CacheSet(key string, value string, expiration time.Duration) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Set(ctx, key, value, expiration).Err()
}

// CacheGet retrieves a value from Redis
func CacheGet(key string) (string, error) {
	if RedisClient == nil {
		return "", fmt.Errorf("Redis client not initialized")
	}
	val, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("key not found")
	}
	return val, err
}

// CacheDelete removes a key from Redis
func CacheDelete(key string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Del(ctx, key).Err()
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// generateTokenHash creates a SHA256 hash of the access token for use as
// a Redis key, so raw tokens are never stored.
func generateTokenHash(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// HashKey hashes an arbitrary value for use inside a cache key.
func HashKey(value string) string {
	return generateTokenHash(value)
}

// CreateTokenSession creates a new token session in Redis keyed by the
// token hash.
func CreateTokenSession(accessToken string, profile models.PrincipalProfile, ttl time.Duration) (*models.TokenSession, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	now := time.Now()
	session := &models.TokenSession{
		Profile:    profile,
		SessionID:  uuid.New().String(),
		CreatedAt:  now,
		LastUsedAt: now,
		ExpiresAt:  now.Add(ttl),
	}

	sessionData, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	key := fmt.Sprintf("token:session:%s", generateTokenHash(accessToken))
	if err := RedisClient.Set(ctx, key, sessionData, ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session in Redis: %w", err)
	}

	return session, nil
}

// GetTokenSession retrieves a token session from Redis (token hash lookup)
func GetTokenSession(accessToken string) (*models.TokenSession, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	key := fmt.Sprintf("token:session:%s", generateTokenHash(accessToken))
	sessionData, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session models.TokenSession
	if err := json.Unmarshal([]byte(sessionData), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.IsExpired() {
		RedisClient.Del(ctx, key)
		return nil, fmt.Errorf("session expired")
	}

	// Touch the session; losing the write only loses the usage timestamp.
	session.UpdateLastUsed()
	if data, err := json.Marshal(&session); err == nil {
		ttl := time.Until(session.ExpiresAt)
		if ttl > 0 {
			RedisClient.Set(ctx, key, data, ttl)
		}
	}

	return &session, nil
}

// RevokeTokenSession removes a token session from Redis
func RevokeTokenSession(accessToken string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	key := fmt.Sprintf("token:session:%s", generateTokenHash(accessToken))
	return RedisClient.Del(ctx, key).Err()
}

// cartKey namespaces carts by store so a visitor keeps an independent cart
// per storefront.
func cartKey(storeID, sessionID string) string {
	return fmt.Sprintf("cart:%s:%s", storeID, sessionID)
}

// GetCart loads a visitor's cart for one storefront. A missing cart is not
// an error; an empty cart is returned instead.
func GetCart(storeID, sessionID string) (*models.Cart, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := RedisClient.Get(ctx, cartKey(storeID, sessionID)).Result()
	if err == redis.Nil {
		return &models.Cart{StoreID: storeID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart from Redis: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return &cart, nil
}

// SaveCart stores a visitor's cart, refreshing its TTL.
func SaveCart(sessionID string, cart *models.Cart) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	return RedisClient.Set(ctx, cartKey(cart.StoreID, sessionID), data, CartTTL).Err()
}

// DeleteCart drops a visitor's cart, e.g. after checkout.
func DeleteCart(storeID, sessionID string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Del(ctx, cartKey(storeID, sessionID)).Err()
}
