package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/swap-router/internal/http/httputil"
)

// RateLimiter is a per-IP token bucket refilled at rate tokens per second.
// Buckets that have refilled completely are dropped, since a fresh bucket
// starts full anyway.
type RateLimiter struct {
	mu        sync.Mutex
	rate      float64
	burst     float64
	tokens    map[string]float64
	lastTime  map[string]time.Time
	now       func() time.Time
	idleAfter time.Duration
	lastSweep time.Time
}

func NewRateLimiter(rate, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:     float64(rate),
		burst:    float64(burst),
		tokens:   make(map[string]float64),
		lastTime: make(map[string]time.Time),
		now:      time.Now,
	}
	if rate > 0 {
		rl.idleAfter = time.Duration(float64(burst) / float64(rate) * float64(time.Second))
		if rl.idleAfter < time.Second {
			rl.idleAfter = time.Second
		}
	}
	return rl
}

// sweep drops idle buckets at most once per idleAfter. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if rl.idleAfter == 0 || now.Sub(rl.lastSweep) < rl.idleAfter {
		return
	}
	rl.lastSweep = now
	for key, last := range rl.lastTime {
		if now.Sub(last) >= rl.idleAfter {
			delete(rl.lastTime, key)
			delete(rl.tokens, key)
		}
	}
}

// Len is the number of clients currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.tokens)
}

// Allow takes one token for key and reports whether one was available.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	tokens, exists := rl.tokens[key]
	if !exists {
		tokens = rl.burst
	} else {
		tokens += now.Sub(rl.lastTime[key]).Seconds() * rl.rate
		if tokens > rl.burst {
			tokens = rl.burst
		}
	}
	rl.lastTime[key] = now

	if tokens < 1 {
		rl.tokens[key] = tokens
		return false
	}
	rl.tokens[key] = tokens - 1
	return true
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			httputil.AbortWithError(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
