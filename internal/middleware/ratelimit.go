package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Per-IP limit for every route except liveness, health and metrics
	APIMax        int
	APIExpiration time.Duration

	// Per-IP limit for /learn-from-wiki, which fans out to external APIs
	WikiMax        int
	WikiExpiration time.Duration
}

// NewRateLimitConfig derives the limits from the per-minute API budget.
// Development mode relaxes both.
func NewRateLimitConfig(apiPerMinute int, environment string) *RateLimitConfig {
	if apiPerMinute <= 0 {
		apiPerMinute = 120
	}
	wiki := apiPerMinute / 4
	if wiki < 1 {
		wiki = 1
	}

	config := &RateLimitConfig{
		APIMax:         apiPerMinute,
		APIExpiration:  1 * time.Minute,
		WikiMax:        wiki,
		WikiExpiration: 1 * time.Minute,
	}

	if environment == "development" {
		config.APIMax *= 10
		config.WikiMax *= 10
		log.Println("⚠️  [RATE-LIMIT] Development mode: using relaxed rate limits")
	}

	return config
}

// APIRateLimiter creates the per-IP limiter for the public routes
func APIRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.APIMax,
		Expiration: config.APIExpiration,
		Next: func(c *fiber.Ctx) bool {
			switch c.Path() {
			case "/", "/health", "/metrics":
				return true
			}
			return false
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return "api:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] API limit reached for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status":      "error",
				"message":     "Too many requests. Please slow down.",
				"retry_after": int(config.APIExpiration.Seconds()),
			})
		},
	})
}

// WikiRateLimiter limits encyclopedia lookups per IP
func WikiRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.WikiMax,
		Expiration: config.WikiExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "wiki:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("⚠️  [RATE-LIMIT] Wiki lookup limit reached for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status":      "error",
				"message":     "Too many lookups. Please wait before learning more topics.",
				"retry_after": int(config.WikiExpiration.Seconds()),
			})
		},
	})
}
