package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimitConfig(t *testing.T) {
	config := NewRateLimitConfig(120, "production")
	assert.Equal(t, 120, config.APIMax)
	assert.Equal(t, 30, config.WikiMax)

	config = NewRateLimitConfig(0, "production")
	assert.Equal(t, 120, config.APIMax)

	config = NewRateLimitConfig(2, "production")
	assert.Equal(t, 1, config.WikiMax)

	config = NewRateLimitConfig(120, "development")
	assert.Equal(t, 1200, config.APIMax)
	assert.Equal(t, 300, config.WikiMax)
}

func TestAPIRateLimiter(t *testing.T) {
	config := NewRateLimitConfig(2, "production")

	app := fiber.New()
	app.Use(APIRateLimiter(config))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/leon", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/leon", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/leon", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	// Liveness is never limited
	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
