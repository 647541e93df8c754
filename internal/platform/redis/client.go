// Package redis wires the Redis connection backing the audit log cache.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"markpart/internal/platform/config"
)

// Client wraps go-redis with the health hook the transport layer probes.
type Client struct {
	*redis.Client
}

// New connects using the configured URL. An empty URL disables Redis and
// returns nil; every reconstruction then runs uncached.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health reports whether the connection is usable; /health degrades the
// process to 503 when it is not.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}
