// File: internal/database/cache.go
// MUD Engine - Cache-Aside Layer

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"mudengine/internal/config"
)

// Cache wraps a Redis client in front of the repository functions
// above. It is optional: when disabled, every method is a pass-through
// that always misses, so callers can use it unconditionally.
type Cache struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
}

var sharedCache *Cache = &Cache{}

// InitCache connects to Redis if cfg.RedisEnabled and installs it as
// the process-wide cache. Safe to call with RedisEnabled=false.
func InitCache(cfg *config.Config) error {
	if !cfg.RedisEnabled {
		sharedCache = &Cache{enabled: false}
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		DB:   cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	sharedCache = &Cache{client: client, enabled: true, ttl: 5 * time.Minute}
	log.Println("Redis cache connected")
	return nil
}

// GetCache returns the process-wide cache instance.
func GetCache() *Cache { return sharedCache }

func roomCacheKey(id string) string { return "room:" + id }

// GetRoomCached returns a cached room, or nil on miss/disabled.
func (c *Cache) GetRoomCached(ctx context.Context, id string) *Room {
	if c == nil || !c.enabled {
		return nil
	}
	data, err := c.client.Get(ctx, roomCacheKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var r Room
	if err := json.Unmarshal(data, &r); err != nil {
		return nil
	}
	return &r
}

// SetRoomCached stores a room in the cache, a no-op when disabled.
func (c *Cache) SetRoomCached(ctx context.Context, r *Room) {
	if c == nil || !c.enabled {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, roomCacheKey(r.ID), data, c.ttl).Err(); err != nil {
		log.Printf("cache set room %s: %v", r.ID, err)
	}
}

// InvalidateRoom drops a room's cache entry after a mutation.
func (c *Cache) InvalidateRoom(ctx context.Context, id string) {
	if c == nil || !c.enabled {
		return
	}
	c.client.Del(ctx, roomCacheKey(id))
}

func sessionCacheKey(playerID string) string { return "session:player:" + playerID }

// SetActiveSession records which session id currently owns playerID,
// backing the duplicate-login check across process restarts.
func (c *Cache) SetActiveSession(ctx context.Context, playerID, sessionID string) {
	if c == nil || !c.enabled {
		return
	}
	if err := c.client.Set(ctx, sessionCacheKey(playerID), sessionID, 0).Err(); err != nil {
		log.Printf("cache set session for %s: %v", playerID, err)
	}
}

// GetActiveSession returns the session id owning playerID, if cached.
func (c *Cache) GetActiveSession(ctx context.Context, playerID string) (string, bool) {
	if c == nil || !c.enabled {
		return "", false
	}
	sid, err := c.client.Get(ctx, sessionCacheKey(playerID)).Result()
	if err != nil {
		return "", false
	}
	return sid, true
}

// ClearActiveSession removes the session record on logout/disconnect.
func (c *Cache) ClearActiveSession(ctx context.Context, playerID string) {
	if c == nil || !c.enabled {
		return
	}
	c.client.Del(ctx, sessionCacheKey(playerID))
}

// Close releases the underlying Redis client, if any.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
