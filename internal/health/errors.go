package health

import (
	"net/http"
	"strings"
	"time"
)

// IsQuotaError detects if an error is related to quota exhaustion or rate limiting
func IsQuotaError(statusCode int, responseBody string) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}

	lowerBody := strings.ToLower(responseBody)
	quotaPatterns := []string{
		"quota exceeded",
		"rate limit",
		"ratelimited",
		"too many requests",
		"slow down",
		"daily limit",
		"char limit",
		"insufficient_quota",
	}

	for _, pattern := range quotaPatterns {
		if strings.Contains(lowerBody, pattern) {
			return true
		}
	}

	return false
}

// ParseCooldownDuration determines the appropriate cooldown based on the error type
func ParseCooldownDuration(statusCode int, responseBody string) time.Duration {
	lowerBody := strings.ToLower(responseBody)

	// Daily translation quota - the key is useless until tomorrow's reset
	if strings.Contains(lowerBody, "daily limit") ||
		strings.Contains(lowerBody, "char limit") ||
		strings.Contains(lowerBody, "insufficient_quota") {
		return 1 * time.Hour
	}

	// Per-second throttling (Wikimedia answers 429 with "ratelimited")
	if statusCode == http.StatusTooManyRequests || strings.Contains(lowerBody, "ratelimited") {
		return 30 * time.Second
	}

	return 1 * time.Minute
}
