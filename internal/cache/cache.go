// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package cache holds the Redis-backed helpers used by request flows.
package cache

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/website/internal/config"
	"github.com/redis/go-redis/v9"
)

const defaultPingTimeout = 5 * time.Second

// Connect creates a Redis client and verifies connectivity with a ping.
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
