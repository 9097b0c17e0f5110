// Package limiter provides per-service rate limiting for calls to external models.
package limiter

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Service keys used by the embedder and oracle wrappers.
const (
	ServiceEmbedding = "embedding"
	ServiceOracle    = "oracle"
)

// Limiter holds one token bucket per service key.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter whose unknown keys get the given default rate.
// A rate <= 0 means unlimited.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  toLimit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until key may issue one request or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.getLimiter(key).Wait(ctx)
}

// Allow reports whether key may issue a request now without waiting.
func (l *Limiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

// SetRate sets a custom rate for key. A rate <= 0 means unlimited.
func (l *Limiter) SetRate(key string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}
	l.limiters[key] = rate.NewLimiter(toLimit(requestsPerSecond), burst)
}

func (l *Limiter) getLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[key] = limiter
	return limiter
}

func toLimit(requestsPerSecond float64) rate.Limit {
	if requestsPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(requestsPerSecond)
}
