package redisauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/TechSavvyAce/safeping-sub001/internal/config"
	"github.com/redis/go-redis/v9"
)

// AdminAuth validates administrative credentials against the external
// key/value auth service. Keys are stored hashed; this service is only
// a consumer.
type AdminAuth struct {
	client    *redis.Client
	keyPrefix string
}

func NewAdminAuth(cfg config.AdminAuthConfig) *AdminAuth {
	return &AdminAuth{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}),
		keyPrefix: cfg.KeyPrefix,
	}
}

func (a *AdminAuth) CheckCredentials(ctx context.Context, apiKey string) (bool, error) {
	if apiKey == "" {
		return false, nil
	}

	digest := sha256.Sum256([]byte(apiKey))
	key := a.keyPrefix + hex.EncodeToString(digest[:])

	exists, err := a.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("checking admin credentials: %w", err)
	}

	return exists > 0, nil
}
