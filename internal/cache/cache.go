package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to redis, or returns nil when the URL is empty
// or redis is unreachable. Callers must tolerate a nil client.
func NewRedisClient(url string) *redis.Client {
	if url == "" {
		log.Printf("redis disabled: empty url")
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("redis disabled: %v", err)
		return nil
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis disabled: %v", err)
		return nil
	}
	return rdb
}

// UnreadCache keeps per-user unread message counts in redis so the
// inbox badge poll does not hit the database every time. Nil-safe: all
// methods are noops without a client.
type UnreadCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUnreadCache(rdb *redis.Client, ttl time.Duration) *UnreadCache {
	return &UnreadCache{rdb: rdb, ttl: ttl}
}

func (c *UnreadCache) key(userID int) string {
	return fmt.Sprintf("unread:%d", userID)
}

// Get returns the cached count and whether one was present.
func (c *UnreadCache) Get(ctx context.Context, userID int) (int, bool) {
	if c == nil || c.rdb == nil {
		return 0, false
	}
	val, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the count with the cache TTL.
func (c *UnreadCache) Set(ctx context.Context, userID, count int) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(userID), count, c.ttl).Err(); err != nil {
		log.Printf("unread cache set failed: %v", err)
	}
}

// Invalidate drops cached counts after sends and reads.
func (c *UnreadCache) Invalidate(ctx context.Context, userIDs ...int) {
	if c == nil || c.rdb == nil {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.key(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("unread cache invalidate failed: %v", err)
	}
}
