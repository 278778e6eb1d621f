package utils

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"project/backend/config"
)

// InitRedis connects to Redis and verifies the connection. Callers treat a
// nil client as "caching disabled", so a failure here is not fatal to the
// application.
func InitRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
