package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/GiftScout/internal/pkg/config"
)

const pingTimeout = 2 * time.Second

// SetupCache builds the Redis client for the shared answer cache. An
// unreachable server is only logged; callers check Ping before relying on it.
func SetupCache(cfg config.CacheConfig) *redis.Client {
	client := NewClient(cfg, 0)

	if err := Ping(context.Background(), client); err != nil {
		log.Warnf("[Cache] Could not connect to Redis at %s: %v", client.Options().Addr, err)
	} else {
		log.Infof("[Cache] Connected to Redis at %s", client.Options().Addr)
	}
	return client
}

// NewClient returns a client for the given logical database without connecting.
func NewClient(cfg config.CacheConfig, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       db,
	})
}

// Ping checks the connection with a short timeout.
func Ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return fmt.Errorf("cache: no client")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
