// Package resultstore caches rendered query answers keyed by their thresholds.
package resultstore

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/GiftScout/internal/pkg/cache"
	"github.com/ManuelReschke/GiftScout/internal/pkg/config"
)

const (
	DefaultTTL        = 30 * time.Minute
	DefaultMaxEntries = 20
	DefaultKeyPrefix  = "giftscout:answer:"
)

// Store holds rendered answers. A failing backend behaves like a miss.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, answer string)
}

// Key identifies an answer by its query thresholds.
func Key(maxRate float64, maxLockDays int) string {
	return fmt.Sprintf("%g:%d", maxRate, maxLockDays)
}

// Disabled never hits.
type Disabled struct{}

func (Disabled) Get(context.Context, string) (string, bool) { return "", false }
func (Disabled) Put(context.Context, string, string)        {}

// New selects the strategy named in cfg. The redis strategy falls back to
// memory when the server does not answer.
func New(cfg config.CacheConfig, client *redis.Client) Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	switch cfg.Strategy {
	case config.CacheNone:
		log.Info("[ResultStore] Answer cache disabled")
		return Disabled{}
	case config.CacheRedis:
		err := cache.Ping(context.Background(), client)
		if err == nil {
			log.Infof("[ResultStore] Using redis answer cache (ttl %s)", ttl)
			return NewRedisStore(client, DefaultKeyPrefix, ttl)
		}
		log.Warnf("[ResultStore] Redis unavailable, using memory answer cache: %v", err)
	}

	log.Infof("[ResultStore] Using memory answer cache (ttl %s, %d entries)", ttl, cfg.MaxEntries)
	return NewMemoryStore(ttl, cfg.MaxEntries)
}
