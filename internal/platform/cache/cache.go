// Package cache provides a read-through Redis cache for entity
// schedules. When Redis is not configured every operation is a no-op, so
// callers never need to branch on cache availability.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ScheduleCache caches serialized schedules keyed by entity.
type ScheduleCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New builds a cache backed by redisURL. An empty URL disables caching.
func New(redisURL string, ttl time.Duration, logger zerolog.Logger) (*ScheduleCache, error) {
	c := &ScheduleCache{ttl: ttl, logger: logger}
	if redisURL == "" {
		return c, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c.rdb = redis.NewClient(opts)
	return c, nil
}

// Enabled reports whether a Redis backend is configured.
func (c *ScheduleCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *ScheduleCache) key(entityType, entityID string) string {
	return fmt.Sprintf("working_hours:%s:%s", entityType, entityID)
}

// Get loads the cached schedule for an entity into dest. It returns
// false on a miss, on a disabled cache, and on any Redis or decode
// error; cache failures must never fail a read.
func (c *ScheduleCache) Get(ctx context.Context, entityType, entityID string, dest any) bool {
	if !c.Enabled() {
		return false
	}

	data, err := c.rdb.Get(ctx, c.key(entityType, entityID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("entity_type", entityType).Str("entity_id", entityID).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn().Err(err).Str("entity_type", entityType).Str("entity_id", entityID).Msg("cache decode failed")
		return false
	}
	return true
}

// Set stores the schedule for an entity with the configured TTL.
func (c *ScheduleCache) Set(ctx context.Context, entityType, entityID string, v any) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn().Err(err).Msg("cache encode failed")
		return
	}
	if err := c.rdb.Set(ctx, c.key(entityType, entityID), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("entity_type", entityType).Str("entity_id", entityID).Msg("cache write failed")
	}
}

// Invalidate drops the cached schedule for an entity. Called after every
// schedule update so readers never see stale hours.
func (c *ScheduleCache) Invalidate(ctx context.Context, entityType, entityID string) {
	if !c.Enabled() {
		return
	}

	if err := c.rdb.Del(ctx, c.key(entityType, entityID)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("entity_type", entityType).Str("entity_id", entityID).Msg("cache invalidate failed")
	}
}

// Close releases the Redis connection.
func (c *ScheduleCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
