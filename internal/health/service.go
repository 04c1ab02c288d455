package health

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

const (
	defaultFailureThreshold = 3
	defaultRetryAfter       = 1 * time.Minute
)

// Service tracks the health of outbound dependencies and short-circuits
// calls to hosts that keep failing. A nil *Service tracks nothing.
type Service struct {
	mu               sync.RWMutex
	deps             map[string]*DependencyHealth
	failureThreshold int
	retryAfter       time.Duration
}

// NewService creates a new health service. An unhealthy dependency is
// retried once retryAfter has passed.
func NewService(failureThreshold int, retryAfter time.Duration) *Service {
	if failureThreshold <= 0 {
		failureThreshold = defaultFailureThreshold
	}
	if retryAfter <= 0 {
		retryAfter = defaultRetryAfter
	}

	return &Service{
		deps:             make(map[string]*DependencyHealth),
		failureThreshold: failureThreshold,
		retryAfter:       retryAfter,
	}
}

// entry returns the dependency, registering it on first use. Caller holds mu.
func (s *Service) entry(name string) *DependencyHealth {
	h, exists := s.deps[name]
	if !exists {
		h = &DependencyHealth{Name: name, Status: StatusUnknown}
		s.deps[name] = h
		log.Printf("[HEALTH] Tracking dependency %s", name)
	}
	return h
}

// IsAvailable reports whether calls to the dependency may proceed
func (s *Service) IsAvailable(name string) bool {
	if s == nil {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.deps[name]
	if !exists {
		return true
	}

	switch h.Status {
	case StatusUnhealthy, StatusCooldown:
		return time.Now().After(h.CooldownUntil)
	default:
		return true
	}
}

// MarkHealthy records a successful call
func (s *Service) MarkHealthy(name string) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.entry(name)
	wasUnhealthy := h.Status == StatusUnhealthy || h.Status == StatusCooldown
	h.Status = StatusHealthy
	h.FailureCount = 0
	h.LastError = ""
	h.LastSuccessAt = time.Now()
	h.LastChecked = h.LastSuccessAt
	h.CooldownUntil = time.Time{}

	if wasUnhealthy {
		log.Printf("[HEALTH] %s recovered - now healthy", name)
	}
}

// MarkUnhealthy records a failure. Quota errors put the dependency into
// cooldown at once; other errors do so after reaching the threshold.
func (s *Service) MarkUnhealthy(name string, errMsg string, httpCode int) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.entry(name)
	h.FailureCount++
	h.LastError = truncateStr(errMsg, 200)
	h.LastChecked = time.Now()

	if IsQuotaError(httpCode, errMsg) {
		h.Status = StatusCooldown
		h.CooldownUntil = h.LastChecked.Add(ParseCooldownDuration(httpCode, errMsg))
		log.Printf("[HEALTH] %s in COOLDOWN until %s (reason: %s)",
			name, h.CooldownUntil.Format(time.RFC3339), truncateStr(errMsg, 100))
		return
	}

	if h.FailureCount >= s.failureThreshold {
		h.Status = StatusUnhealthy
		h.CooldownUntil = h.LastChecked.Add(s.retryAfter)
		log.Printf("[HEALTH] %s marked UNHEALTHY after %d failures: %s",
			name, h.FailureCount, h.LastError)
	} else {
		log.Printf("[HEALTH] %s failure %d/%d: %s",
			name, h.FailureCount, s.failureThreshold, h.LastError)
	}
}

// Snapshot returns every tracked dependency, sorted by name
func (s *Service) Snapshot() []DependencyHealth {
	if s == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]DependencyHealth, 0, len(s.deps))
	for _, h := range s.deps {
		result = append(result, *h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// UnavailableError is returned instead of calling a dependency in cooldown
func UnavailableError(name string) error {
	return fmt.Errorf("%s is temporarily unavailable after repeated failures", name)
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
