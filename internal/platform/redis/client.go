// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package redis owns the shared go-redis client.

Two key families live on it: session snapshots keyed by user id, which expire
with the refresh window, and course documents, which never expire.
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
	pingTimeout = 2 * time.Second
)

// PoolConfig sizes the client pool. Zero values fall back to defaults.
type PoolConfig struct {
	Size    int
	MinIdle int
}

func (pool PoolConfig) withDefaults() PoolConfig {
	if pool.Size <= 0 {
		pool.Size = 10
	}
	if pool.MinIdle <= 0 || pool.MinIdle > pool.Size {
		pool.MinIdle = min(2, pool.Size)
	}
	return pool
}

// options turns a redis:// or rediss:// URL into client options.
func options(redisURL string, pool PoolConfig) (*redis.Options, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	pool = pool.withDefaults()
	parsed.PoolSize = pool.Size
	parsed.MinIdleConns = pool.MinIdle
	parsed.MaxIdleConns = max(pool.Size/2, pool.MinIdle)
	parsed.DialTimeout = dialTimeout
	parsed.ReadTimeout = ioTimeout
	parsed.WriteTimeout = ioTimeout
	return parsed, nil
}

// NewClient connects to Redis and fails fast when the server is unreachable.
func NewClient(ctx context.Context, redisURL string, pool PoolConfig, logger *slog.Logger) (*redis.Client, error) {
	opts, err := options(redisURL, pool)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", opts.Addr),
		slog.Int("db", opts.DB),
		slog.Int("pool_size", opts.PoolSize),
	)
	return client, nil
}

// Ping is the readiness check for the cache.
func Ping(ctx context.Context, client *redis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}
