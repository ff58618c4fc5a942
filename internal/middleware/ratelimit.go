package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit is a single fixed-window redis INCR+EXPIRE limiter keyed by
// client, simplified from the teacher's three-tier (second/day/month)
// limiter down to the one window a routing API actually needs bounded.
func RateLimit(rdb *redis.Client, window time.Duration, limit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID, ok := c.Locals(clientIDLocal).(string)
		if !ok || clientID == "" {
			clientID = c.IP()
		}

		ctx := context.Background()
		bucket := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("rl:%s:%d", clientID, bucket)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis unavailable: fail open rather than block all traffic.
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			c.Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests",
				"limit":   limit,
			})
		}

		return c.Next()
	}
}
