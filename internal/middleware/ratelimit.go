package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"devconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// RateLimiter enforces fixed-window limits backed by Redis counters.
type RateLimiter struct {
	rdb     *redis.Client
	enabled bool
}

// NewRateLimiter returns a limiter for the environment. Limits are not enforced
// when env is "test", "development" or "stress".
func NewRateLimiter(rdb *redis.Client, env string) *RateLimiter {
	enabled := true
	switch env {
	case "", "test", "development", "stress":
		enabled = false
	}
	return &RateLimiter{rdb: rdb, enabled: enabled}
}

// Check reports whether id may make another request to resource in the current window.
func (l *RateLimiter) Check(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if !l.enabled {
		return true, nil
	}
	if l.rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// Limit returns a Fiber middleware enforcing `limit` requests per `window`.
// It keys by authenticated user id when present, otherwise by remote IP.
func (l *RateLimiter) Limit(limit int, window time.Duration, name ...string) fiber.Handler {
	return l.LimitWithPolicy(limit, window, FailOpen, name...)
}

// LimitWithPolicy is Limit with an explicit failure policy.
func (l *RateLimiter) LimitWithPolicy(limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := CurrentUserID(c); uid != "" {
			id = "user:" + uid
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := l.Check(c.UserContext(), resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit unavailable, failing closed",
					slog.String("resource", resource), slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Msg: "rate limit unavailable"})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{Msg: "rate limit exceeded"})
		}
		return c.Next()
	}
}
