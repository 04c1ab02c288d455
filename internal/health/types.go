package health

import "time"

// HealthStatus represents the health state of an outbound dependency
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusCooldown  HealthStatus = "cooldown"
	StatusUnknown   HealthStatus = "unknown"
)

// DependencyHealth tracks one external API host (a wiki edition or the translator)
type DependencyHealth struct {
	Name          string       `json:"name"`
	Status        HealthStatus `json:"status"`
	LastChecked   time.Time    `json:"last_checked"`
	LastSuccessAt time.Time    `json:"last_success_at"`
	FailureCount  int          `json:"failure_count"`
	LastError     string       `json:"last_error,omitempty"`
	CooldownUntil time.Time    `json:"cooldown_until"`
}
