package middleware

import (
	"net/http" // HTTP status codes
	"sync"     // Limiter map guard
	"time"     // Refill interval

	"github.com/gin-gonic/gin" // Gin web framework
	"golang.org/x/time/rate"   // Token bucket limiter
)

// LoginRateLimiter throttles password attempts per client IP. Every /login call
// and every failed Basic authentication draws from the same per-IP budget.
type LoginRateLimiter struct {
	rpm      int
	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginRateLimiter allows rpm attempts per minute per IP. rpm <= 0 disables limiting.
func NewLoginRateLimiter(rpm int) *LoginRateLimiter {
	return &LoginRateLimiter{rpm: rpm, limiters: map[string]*clientLimiter{}}
}

// Handler rejects requests over the limit with 429
func (l *LoginRateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.enabled() {
			c.Next() // Limiting disabled
			return
		}
		if !l.get(c.ClientIP()).Allow() {
			abortTooManyAttempts(c)
			return
		}
		c.Next()
	}
}

// exhausted reports whether ip has no attempts left, without consuming one
func (l *LoginRateLimiter) exhausted(ip string) bool {
	return l.enabled() && l.get(ip).Tokens() < 1
}

// charge consumes one attempt for ip
func (l *LoginRateLimiter) charge(ip string) {
	if l.enabled() {
		l.get(ip).Allow()
	}
}

func (l *LoginRateLimiter) enabled() bool {
	return l != nil && l.rpm > 0
}

func abortTooManyAttempts(c *gin.Context) {
	c.Header("Retry-After", "60")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts"})
}

func (l *LoginRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if cl, ok := l.limiters[ip]; ok {
		cl.lastSeen = now
		return cl.limiter
	}
	l.gcLocked(now)
	cl := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.rpm)), l.rpm),
		lastSeen: now,
	}
	l.limiters[ip] = cl
	return cl.limiter
}

// gcLocked forgets clients idle for ten minutes once the map grows large
func (l *LoginRateLimiter) gcLocked(now time.Time) {
	if len(l.limiters) < 1000 {
		return
	}
	cutoff := now.Add(-10 * time.Minute)
	for ip, cl := range l.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
		}
	}
}
