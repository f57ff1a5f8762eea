package config

import (
	"context"
	"fmt"
	"freshkeep-backend/internal/utils"
	"time"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis returns nil when REDIS_URL is unset, in which case quotas stay
// in process memory.
func ConnectRedis(ctx context.Context) (*redis.Client, error) {
	url := utils.GetConfig("REDIS_URL")
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
