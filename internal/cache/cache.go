// Package cache provides a two-tier key/value cache with per-entry expiration.
// L1 is in-process memory; an optional L2 Redis tier survives restarts.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCleanupInterval controls how often expired L1 entries are swept.
const DefaultCleanupInterval = 5 * time.Minute

// Cache is a read-through/write-through key/value store. A cache miss is
// reported via the bool return, never as an error; callers degrade to a fresh
// fetch rather than failing.
type Cache struct {
	l1      sync.Map      // key -> *entry
	rdb     *redis.Client // nil when L2 is disabled
	stop    chan struct{}
	stopOne sync.Once
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// New creates a cache. redisURL may be empty to run L1-only; an unreachable
// Redis is logged and degraded to L1-only rather than failing construction.
func New(redisURL string) *Cache {
	c := &Cache{stop: make(chan struct{})}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Printf("cache: invalid redis URL, L2 disabled: %v", err)
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				log.Printf("cache: redis unreachable, L2 disabled: %v", err)
			} else {
				c.rdb = rdb
			}
		}
	}

	go c.cleanupLoop(DefaultCleanupInterval)
	return c
}

// Key builds a deterministic cache key from its parts.
func Key(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("jr:%x", hash[:12])
}

// Get returns the cached value for key, or (nil, false) on a miss or expired
// entry. An L2 hit repopulates L1.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, ok := c.l1.Load(key); ok {
		e := val.(*entry)
		if time.Now().Before(e.expiresAt) {
			return e.data, true
		}
		c.l1.Delete(key)
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			// Repopulate L1 using the remaining L2 TTL.
			if ttl, err := c.rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				c.l1.Store(key, &entry{data: data, expiresAt: time.Now().Add(ttl)})
			}
			return data, true
		}
		if err != redis.Nil {
			log.Printf("cache: redis get failed for %s: %v", key, err)
		}
	}

	return nil, false
}

// Set stores a value in both tiers for ttl. L2 failures are logged, not
// propagated; the L1 write always succeeds.
func (c *Cache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.l1.Store(key, &entry{data: data, expiresAt: time.Now().Add(ttl)})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
			log.Printf("cache: redis set failed for %s: %v", key, err)
		}
	}
}

// Close stops the cleanup goroutine and releases the Redis connection.
func (c *Cache) Close() error {
	c.stopOne.Do(func() { close(c.stop) })
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case now := <-t.C:
			c.l1.Range(func(key, val any) bool {
				if now.After(val.(*entry).expiresAt) {
					c.l1.Delete(key)
				}
				return true
			})
		}
	}
}

// GetJSON decodes a cached JSON value into T. A present-but-corrupt entry is
// treated as a miss.
func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var out T
	data, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		log.Printf("cache: corrupt entry for %s dropped: %v", key, err)
		c.l1.Delete(key)
		return out, false
	}
	return out, true
}

// SetJSON marshals and stores a value. Marshal failures are logged and the
// entry is skipped.
func SetJSON(ctx context.Context, c *Cache, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: failed to marshal entry for %s: %v", key, err)
		return
	}
	c.Set(ctx, key, data, ttl)
}
