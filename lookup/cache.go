package lookup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/redis/go-redis/v9"

	"postzone/metrics"
)

// Cache is an optional redis response cache for zone lookups. A nil Cache
// is disabled; every method is safe to call on it.
type Cache struct {
	rc  *redis.Client
	ttl time.Duration
}

// OpenCacheFromEnv builds the cache from REDIS_ADDR, REDIS_PASS and
// ZONE_CACHE_TTL_SECONDS. No address means caching stays off.
func OpenCacheFromEnv() *Cache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	ttl := time.Hour
	if v := os.Getenv("ZONE_CACHE_TTL_SECONDS"); v != "" {
		// ignore parse errors, keep the default
		if n, _ := strconv.Atoi(v); n > 0 {
			ttl = time.Duration(n) * time.Second
		}
	}
	return &Cache{
		rc:  redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS")}),
		ttl: ttl,
	}
}

// Key truncates coordinates to three decimals so nearby queries share an
// entry.
func Key(p orb.Point) string {
	return fmt.Sprintf("zone:%.3f:%.3f", p[0], p[1])
}

// Get returns the cached response for key, ok=false on miss or when the
// cache is disabled.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	s, err := c.rc.Get(ctx, key).Result()
	if err != nil || s == "" {
		metrics.RedisMissesTotal.Inc()
		return "", false
	}
	metrics.RedisHitsTotal.Inc()
	return s, true
}

// Put stores a response under key for the configured TTL. Write failures
// are ignored; the cache is best effort.
func (c *Cache) Put(ctx context.Context, key, value string) {
	if c == nil {
		return
	}
	_ = c.rc.Set(ctx, key, value, c.ttl).Err()
}
