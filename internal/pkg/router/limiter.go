package router

import (
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"
)

// limiterRedisDB keeps rate limiter keys apart from the answer cache (DB 0).
const limiterRedisDB = 1

// NewLimiterStorage shares rate limiter counters through the Redis server the
// cache client points at. The client must already be known to answer, since
// the storage connects eagerly.
func NewLimiterStorage(client *goredis.Client) fiber.Storage {
	host := "localhost"
	port := 6379
	password := ""
	if client != nil {
		addr := client.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		password = client.Options().Password
	}

	log.Infof("[Router] Rate limiter counters in redis %s:%d/%d", host, port, limiterRedisDB)
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: limiterRedisDB,
		Reset:    false,
	})
}
