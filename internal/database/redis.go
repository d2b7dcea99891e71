package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/platewise/recipe-api/config"
)

// NewRedisClient creates a new Redis client for rate limiting. Returns an
// error if Redis is unreachable; callers may choose to continue without it.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	addr := cfg.RedisAddr()
	if addr == "" {
		return nil, fmt.Errorf("redis is not configured")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("Successfully connected to Redis at %s", addr)
	return client, nil
}
