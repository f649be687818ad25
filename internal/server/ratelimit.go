package server

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// visitorSweepAt is the table size that triggers eviction of idle visitors.
	visitorSweepAt = 10000
	visitorIdleTTL = 10 * time.Minute

	msgRateLimited = "Demasiadas solicitudes. Intenta nuevamente en unos segundos."
)

// RateLimitMiddleware gives each visitor address its own token bucket.
// Paths in skipPaths are never limited.
func RateLimitMiddleware(cfg RateLimitConfig, trust proxyTrust, skipPaths []string) Middleware {
	visitors := newVisitorLimiter(rate.Limit(cfg.RPS), cfg.Burst)
	skip := pathSet(skipPaths)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !skip[r.URL.Path] && !visitors.allow(trust.clientIP(r)) {
				RateLimited(w, msgRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// visitorLimiter holds one token bucket per client address.
type visitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

func newVisitorLimiter(limit rate.Limit, burst int) *visitorLimiter {
	return &visitorLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

func (l *visitorLimiter) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[addr]
	if !ok {
		if len(l.visitors) >= visitorSweepAt {
			l.sweep(now)
		}
		v = &visitor{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[addr] = v
	}
	v.lastSeen = now
	return v.bucket.AllowN(now, 1)
}

// sweep drops visitors idle for longer than visitorIdleTTL. l.mu must be held.
func (l *visitorLimiter) sweep(now time.Time) {
	cutoff := now.Add(-visitorIdleTTL)
	for addr, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, addr)
		}
	}
}
