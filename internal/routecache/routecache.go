// Package routecache caches find_route results in Redis so repeated
// queries for a hot origin/destination pair skip the dijkstra oracle
// entirely. It is adapted almost directly from the teacher's
// internal/cache package: the same singleton client, the same
// sha256-hashed key construction, and the same acquire/wait/release
// distributed lock used to collapse concurrent cache misses onto a
// single computation instead of letting every waiting request recompute.
package routecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/routewise/transitcore/internal/router"
)

var (
	client     *redis.Client
	clientOnce sync.Once
)

// GetClient returns the global redis client, built from environment
// variables on first use (mirrors the teacher's cache.GetClient).
func GetClient() *redis.Client {
	clientOnce.Do(func() {
		client = redis.NewClient(&redis.Options{
			Addr:         getEnv("ROUTECACHE_REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("ROUTECACHE_REDIS_PASSWORD", ""),
			DB:           0,
			PoolSize:     20,
			MinIdleConns: 5,
		})
	})
	return client
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

const (
	routeTTL  = 10 * time.Minute
	lockTTL   = 5 * time.Second
	lockPoll  = 50 * time.Millisecond
	lockSpins = 100 // 100 * 50ms = 5s max wait, matching lockTTL
)

// RouteKey hashes the (from, to, bus_wait_time, bus_velocity) tuple into a
// cache key. Settings are folded into the key because an itinerary computed
// under one router.Settings is meaningless for another.
func RouteKey(from, to string, settings router.Settings) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%g", from, to, settings.BusWaitTime, settings.BusVelocity)))
	return "route:" + hex.EncodeToString(h[:])
}

func lockKey(routeKey string) string {
	return "lock:" + routeKey
}

// cachedItinerary is the JSON-serializable mirror of router.Itinerary,
// since router.Itinerary holds no unexported fields but we pin the wire
// shape here rather than depend on json tags added for a different purpose.
type cachedItinerary struct {
	TotalTime float64       `json:"total_time"`
	Items     []router.Item `json:"items"`
}

// Get returns a cached itinerary, if present and unexpired.
func Get(ctx context.Context, client *redis.Client, key string) (router.Itinerary, bool, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return router.Itinerary{}, false, nil
	}
	if err != nil {
		return router.Itinerary{}, false, fmt.Errorf("routecache: get: %w", err)
	}

	var ci cachedItinerary
	if err := json.Unmarshal(data, &ci); err != nil {
		return router.Itinerary{}, false, fmt.Errorf("routecache: decode: %w", err)
	}
	return router.Itinerary{TotalTime: ci.TotalTime, Items: ci.Items}, true, nil
}

// Set stores an itinerary with routeTTL.
func Set(ctx context.Context, client *redis.Client, key string, it router.Itinerary) error {
	data, err := json.Marshal(cachedItinerary{TotalTime: it.TotalTime, Items: it.Items})
	if err != nil {
		return fmt.Errorf("routecache: encode: %w", err)
	}
	return client.Set(ctx, key, data, routeTTL).Err()
}

// AcquireLock attempts to take the compute-lock for a route key, returning
// true if this caller now owns it.
func AcquireLock(ctx context.Context, client *redis.Client, routeKey string) (bool, error) {
	ok, err := client.SetNX(ctx, lockKey(routeKey), "1", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("routecache: acquire lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock drops the compute-lock.
func ReleaseLock(ctx context.Context, client *redis.Client, routeKey string) error {
	return client.Del(ctx, lockKey(routeKey)).Err()
}

// WaitForLock polls until the lock for routeKey is released or lockSpins is
// exhausted, so a request that lost the race to compute can pick up the
// winner's cached result instead of recomputing.
func WaitForLock(ctx context.Context, client *redis.Client, routeKey string) error {
	for i := 0; i < lockSpins; i++ {
		exists, err := client.Exists(ctx, lockKey(routeKey)).Result()
		if err != nil {
			return fmt.Errorf("routecache: wait for lock: %w", err)
		}
		if exists == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockPoll):
		}
	}
	return fmt.Errorf("routecache: timed out waiting for lock %q", routeKey)
}

// FindRoute serves a cached itinerary when present; otherwise it acquires
// the compute-lock, runs r.FindRoute, caches the result and releases the
// lock. A caller that loses the lock race waits for the winner, then reads
// its cached value — this is the same cache-then-lock-then-compute flow the
// teacher's api.computeRoute uses for its routing handler.
func FindRoute(ctx context.Context, client *redis.Client, r *router.Router, from, to string, settings router.Settings) (router.Itinerary, bool, error) {
	key := RouteKey(from, to, settings)

	if it, ok, err := Get(ctx, client, key); err != nil {
		return router.Itinerary{}, false, err
	} else if ok {
		return it, true, nil
	}

	acquired, err := AcquireLock(ctx, client, key)
	if err != nil {
		return router.Itinerary{}, false, err
	}

	if !acquired {
		if err := WaitForLock(ctx, client, key); err != nil {
			return router.Itinerary{}, false, err
		}
		return Get(ctx, client, key)
	}
	defer ReleaseLock(ctx, client, key)

	it, found := r.FindRoute(from, to)
	if !found {
		return router.Itinerary{}, false, nil
	}
	if err := Set(ctx, client, key, it); err != nil {
		return router.Itinerary{}, false, err
	}
	return it, true, nil
}

// HealthCheck pings redis, used by the health endpoint.
func HealthCheck(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
