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

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCheckRateLimit(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		requests int
		limit    int
		wantLast bool
		wantErr  bool
		nilRedis bool
	}{
		{
			name:     "test environment bypass",
			env:      "test",
			requests: 5,
			limit:    1,
			wantLast: true,
		},
		{
			name:     "development environment bypass",
			env:      "development",
			requests: 5,
			limit:    1,
			wantLast: true,
		},
		{
			name:     "nil redis errors in production",
			env:      "production",
			requests: 1,
			limit:    1,
			nilRedis: true,
			wantErr:  true,
		},
		{
			name:     "under limit allowed",
			env:      "production",
			requests: 3,
			limit:    5,
			wantLast: true,
		},
		{
			name:     "over limit blocked",
			env:      "production",
			requests: 6,
			limit:    5,
			wantLast: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)

			var rdb *redis.Client
			if !tt.nilRedis {
				rdb = newTestRedis(t)
			}

			var (
				allowed bool
				err     error
			)
			for i := 0; i < tt.requests; i++ {
				allowed, err = CheckRateLimit(context.Background(), rdb, "vote", "ip:1.1.1.1", tt.limit, time.Minute)
			}

			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, allowed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLast, allowed)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := newTestRedis(t)

	app := fiber.New()
	app.Post("/feedbacks", RateLimit(rdb, 2, time.Minute, "submit_feedback"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/feedbacks", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/feedbacks", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitFailClosed(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	app := fiber.New()
	app.Post("/feedbacks", RateLimitWithPolicy(nil, 2, time.Minute, FailClosed), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/feedbacks", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
