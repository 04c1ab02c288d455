package services

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// OutboundLimiter implements two-tier rate limiting for calls to external APIs
type OutboundLimiter struct {
	globalLimiter   *rate.Limiter // Overall requests/second leaving the server
	perHostLimiters *sync.Map     // map[string]*rate.Limiter - per API host
	perHostRate     float64
}

// NewOutboundLimiter creates a limiter allowing globalRate req/s overall
// and half of that per host (minimum 1 req/s)
func NewOutboundLimiter(globalRate float64) *OutboundLimiter {
	burst := int(globalRate * 2)
	if burst < 1 {
		burst = 1
	}
	perHost := globalRate / 2
	if perHost < 1 {
		perHost = 1
	}
	return &OutboundLimiter{
		globalLimiter:   rate.NewLimiter(rate.Limit(globalRate), burst),
		perHostLimiters: &sync.Map{},
		perHostRate:     perHost,
	}
}

// Wait blocks until both tiers allow a request to host, or ctx ends
func (l *OutboundLimiter) Wait(ctx context.Context, host string) error {
	// Tier 1: Global rate limit (be a polite API client)
	if err := l.globalLimiter.Wait(ctx); err != nil {
		return err
	}

	// Tier 2: Per-host rate limit (one wiki edition cannot starve the others)
	return l.getOrCreateHostLimiter(host).Wait(ctx)
}

// getOrCreateHostLimiter gets or creates a rate limiter for a host
func (l *OutboundLimiter) getOrCreateHostLimiter(host string) *rate.Limiter {
	if limiter, ok := l.perHostLimiters.Load(host); ok {
		return limiter.(*rate.Limiter)
	}

	newLimiter := rate.NewLimiter(rate.Limit(l.perHostRate), int(l.perHostRate)+1)

	// Try to store, but use existing if another goroutine created it first
	actual, _ := l.perHostLimiters.LoadOrStore(host, newLimiter)
	return actual.(*rate.Limiter)
}
