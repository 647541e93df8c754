// Package cache holds reconstructed audit logs in Redis so repeated report
// requests do not replay the full history every time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"markpart/internal/participant/models"
)

const auditLogKeyPrefix = "auditlog:"

// ErrMiss is returned when no cached log exists for the key.
var ErrMiss = errors.New("audit log cache miss")

// AuditLogCache stores flattened audit logs keyed by entity kind and id.
// Entries expire after the configured TTL; the next request rebuilds from
// history, so a stale or lost cache never affects correctness.
type AuditLogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *AuditLogCache {
	return &AuditLogCache{client: client, ttl: ttl}
}

func key(entity, id string) string {
	return auditLogKeyPrefix + entity + ":" + id
}

// Get fetches a cached audit log. ErrMiss means absent, any other error
// means the cache is unavailable; callers treat both as "rebuild".
func (c *AuditLogCache) Get(ctx context.Context, entity, id string) ([]models.AuditLogEntry, error) {
	payload, err := c.client.Get(ctx, key(entity, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var entries []models.AuditLogEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return entries, nil
}

// Set stores an audit log with the cache TTL.
func (c *AuditLogCache) Set(ctx context.Context, entity, id string, entries []models.AuditLogEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key(entity, id), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
