package database

import (
	"context"
	"fmt"
	"time"

	"nutrimatch-go-worker/utils"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// InitRedis connects the catalog cache. It is a no-op when redis is disabled.
func InitRedis(ctx context.Context) error {
	cfg := utils.EnvConfig.Redis
	if cfg.Enable != 1 {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	Redis = client
	return nil
}

// RedisTTL is the configured cache lifetime, ten minutes by default.
func RedisTTL() time.Duration {
	if ttl, err := time.ParseDuration(utils.EnvConfig.Redis.TTL); err == nil && ttl > 0 {
		return ttl
	}
	return 10 * time.Minute
}
