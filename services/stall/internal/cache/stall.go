package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/domain"
)

// StallCache is a Redis-backed read cache for stall-by-ID lookups. It is
// invalidated whenever a stall is updated or the event consumer applies an
// aggregate, so a cached entry is at most TTL-stale.
type StallCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStallCache creates a stall cache with the given TTL.
func NewStallCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *StallCache {
	return &StallCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func stallKey(id string) string {
	return "stall:" + id
}

// Get returns the cached stall, or (nil, false) on a miss. Cache errors are
// logged and treated as misses so Redis outages never fail a read.
func (c *StallCache) Get(ctx context.Context, id string) (*domain.Stall, bool) {
	raw, err := c.client.Get(ctx, stallKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "stall cache get failed",
				slog.String("stall_id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}

	var s domain.Stall
	if err := json.Unmarshal(raw, &s); err != nil {
		c.logger.WarnContext(ctx, "stall cache entry corrupt, dropping",
			slog.String("stall_id", id),
			slog.String("error", err.Error()),
		)
		_ = c.client.Del(ctx, stallKey(id)).Err()
		return nil, false
	}

	return &s, true
}

// Set stores the stall. Failures are logged, not returned.
func (c *StallCache) Set(ctx context.Context, s *domain.Stall) {
	raw, err := json.Marshal(s)
	if err != nil {
		c.logger.WarnContext(ctx, "stall cache marshal failed",
			slog.String("stall_id", s.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := c.client.Set(ctx, stallKey(s.ID), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "stall cache set failed",
			slog.String("stall_id", s.ID),
			slog.String("error", err.Error()),
		)
	}
}

// Invalidate drops the cached entry for a stall.
func (c *StallCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, stallKey(id)).Err(); err != nil {
		return fmt.Errorf("invalidate stall cache: %w", err)
	}
	return nil
}
