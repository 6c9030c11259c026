package resultstore

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// RedisStore shares answers between instances through Redis.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("[ResultStore] Redis get %s failed: %v", key, err)
		}
		return "", false
	}
	return val, true
}

func (s *RedisStore) Put(ctx context.Context, key, answer string) {
	if err := s.client.Set(ctx, s.prefix+key, answer, s.ttl).Err(); err != nil {
		log.Warnf("[ResultStore] Redis set %s failed: %v", key, err)
	}
}
