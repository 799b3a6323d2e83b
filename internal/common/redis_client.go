package common

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"leadcapture/formbridge/internal/config"
	"leadcapture/formbridge/internal/logging"
)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	logging.Info("Initializing Redis client", "addr", addr)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// the pool keeps retrying, so the client is still usable
		logging.Error("Failed to ping Redis", "addr", addr, "error", err)
		return client
	}

	logging.Info("Connected to Redis", "addr", addr)
	return client
}

// NewCache picks Redis when it is configured and the in-memory cache otherwise
func NewCache(cfg config.RedisConfig) CacheInterface {
	if !cfg.Enabled() {
		return NewCacheService(600, 300)
	}
	return NewRedisCacheService(NewRedisClient(cfg))
}
