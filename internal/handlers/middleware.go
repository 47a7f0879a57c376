package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/binhtph/quiz-app/internal/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiter hands out one token bucket per client IP. Buckets idle for
// longer than idleTTL are dropped on the next lookup sweep.
type ipLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(perMinute int) *ipLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &ipLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idleTTL {
		for key, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > l.idleTTL {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// RateLimitMiddleware throttles each client IP to perMinute requests with a
// burst of the same size.
func RateLimitMiddleware(perMinute int, m *metrics.Metrics) gin.HandlerFunc {
	limiter := newIPLimiter(perMinute)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			m.PINRejected()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Message: "Too many attempts, try again later",
			})
			return
		}
		c.Next()
	}
}
