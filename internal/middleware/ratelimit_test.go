package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRateLimiter_Check(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("bypassed outside production-like environments", func(t *testing.T) {
		for _, env := range []string{"test", "development", "stress"} {
			allowed, err := NewRateLimiter(nil, env).Check(ctx, "posts", "1", 1, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed, env)
		}
	})

	t.Run("nil redis reports an error", func(t *testing.T) {
		allowed, err := NewRateLimiter(nil, "production").Check(ctx, "posts", "1", 1, time.Minute)
		assert.Error(t, err)
		assert.False(t, allowed)
	})

	t.Run("counts within the window", func(t *testing.T) {
		mr, rdb := newMiniRedis(t)
		l := NewRateLimiter(rdb, "production")

		for i := 0; i < 2; i++ {
			allowed, err := l.Check(ctx, "posts", "user:a", 2, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := l.Check(ctx, "posts", "user:a", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		mr.FastForward(time.Minute + time.Second)
		allowed, err = l.Check(ctx, "posts", "user:a", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestRateLimiter_Middleware(t *testing.T) {
	t.Parallel()
	_, rdb := newMiniRedis(t)

	app := fiber.New()
	app.Post("/login", NewRateLimiter(rdb, "production").Limit(1, time.Minute, "login"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimiter_FailurePolicies(t *testing.T) {
	t.Parallel()
	l := NewRateLimiter(nil, "production")

	app := fiber.New()
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
	app.Get("/open", l.LimitWithPolicy(1, time.Minute, FailOpen), ok)
	app.Get("/closed", l.LimitWithPolicy(1, time.Minute, FailClosed), ok)

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/closed", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
