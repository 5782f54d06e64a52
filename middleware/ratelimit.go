package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterSweepEvery = 5 * time.Minute
	limiterIdleAfter  = 10 * time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides per-IP token-bucket rate limiting.
type RateLimiter struct {
	r        rate.Limit
	b        int
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	stopCh   chan struct{}
	once     sync.Once
}

// NewRateLimiter creates a limiter allowing r requests per second with burst b per client
// IP and starts its idle-entry sweeper. Call Stop to end the sweeper.
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		r:        r,
		b:        b,
		limiters: make(map[string]*ipLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// RateLimit is a convenience for NewRateLimiter(r, b).Middleware() whose sweeper lives
// for the rest of the process.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	return NewRateLimiter(r, b).Middleware()
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now().Add(-limiterIdleAfter))
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, il := range rl.limiters {
		if il.lastSeen.Before(cutoff) {
			delete(rl.limiters, ip)
		}
	}
}

func (rl *RateLimiter) get(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	il, ok := rl.limiters[ip]
	if !ok {
		il = &ipLimiter{limiter: rate.NewLimiter(rl.r, rl.b)}
		rl.limiters[ip] = il
	}
	il.lastSeen = now
	return il.limiter
}

// Tracked returns how many client IPs currently hold a limiter.
func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Stop ends the sweeper. The middleware keeps working.
func (rl *RateLimiter) Stop() { rl.once.Do(func() { close(rl.stopCh) }) }

// Middleware rejects requests over the limit with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.get(c.ClientIP(), time.Now()).Allow() {
			retry := 1
			if rl.r > 0 {
				retry = int(math.Ceil(1 / float64(rl.r)))
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
