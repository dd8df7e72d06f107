package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mathclash/internal/config"
	"mathclash/internal/models"
)

const globalTopKeyPrefix = "rating:global:"

// LeaderboardCache keeps a short-lived snapshot of the global rating in
// Redis so the rating screens don't hit the database on every request.
// The database remains the source of truth; entries expire on their own
// and are invalidated eagerly on user reset.
//
// A nil *LeaderboardCache is valid and disables caching, so callers never
// have to guard on whether Redis was configured.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFromConfig returns a cache backed by the configured Redis instance,
// or nil when REDIS_ADDR is not set.
func NewFromConfig(cfg *config.Config) *LeaderboardCache {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &LeaderboardCache{client: client, ttl: cfg.TopCacheTTL}
}

// GetGlobalTop returns the cached snapshot for the given limit. The second
// return value reports whether a usable snapshot was found; cache errors
// are treated as a miss.
func (c *LeaderboardCache) GetGlobalTop(ctx context.Context, limit int) ([]models.RatingEntry, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, globalTopKeyPrefix+strconv.Itoa(limit)).Result()
	if err != nil {
		return nil, false
	}
	var entries []models.RatingEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// SetGlobalTop stores a snapshot with the configured TTL. Failures are
// ignored: the next read simply falls through to the database.
func (c *LeaderboardCache) SetGlobalTop(ctx context.Context, limit int, entries []models.RatingEntry) {
	if c == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	c.client.Set(ctx, globalTopKeyPrefix+strconv.Itoa(limit), data, c.ttl)
}

// Invalidate drops all cached snapshots. Used after a user reset so the
// rating never shows a deleted user for the remainder of a TTL window.
func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, globalTopKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
}

// Close releases the underlying Redis connection.
func (c *LeaderboardCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
