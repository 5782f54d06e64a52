package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newRateLimitRouter(t *testing.T, r rate.Limit, b int) (*gin.Engine, *RateLimiter) {
	rl := NewRateLimiter(r, b)
	t.Cleanup(rl.Stop)
	eng := gin.New()
	eng.Use(rl.Middleware())
	eng.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng, rl
}

func hit(eng *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	eng.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsFirst(t *testing.T) {
	r, _ := newRateLimitRouter(t, 100, 5)
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
}

func TestRateLimit_Burst(t *testing.T) {
	// Burst of 3, then reject
	r, _ := newRateLimitRouter(t, 0.5, 3) // slow refill so we exhaust quickly
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r, "10.0.1.1").Code, "request %d should be allowed", i+1)
	}
	w := hit(r, "10.0.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
}

func TestRateLimit_PerIP(t *testing.T) {
	// Two IPs with burst=1 each → each gets one allowed request
	r, rl := newRateLimitRouter(t, 0.001, 1)

	for _, ip := range []string{"10.1.1.1", "10.1.1.2"} {
		assert.Equal(t, http.StatusOK, hit(r, ip).Code, "first request from %s should be OK", ip)
	}
	assert.Equal(t, 2, rl.Tracked())

	// Second request from first IP should be rejected
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.1.1.1").Code)
}

func TestRateLimit_EvictIdle(t *testing.T) {
	r, rl := newRateLimitRouter(t, 0.001, 1)
	hit(r, "10.2.0.1")
	hit(r, "10.2.0.2")

	rl.evictIdle(time.Now().Add(-time.Minute))
	assert.Equal(t, 2, rl.Tracked(), "recent clients are kept")

	rl.evictIdle(time.Now().Add(time.Minute))
	assert.Equal(t, 0, rl.Tracked())

	// an evicted client starts with a fresh bucket
	assert.Equal(t, http.StatusOK, hit(r, "10.2.0.1").Code)
}

func TestRateLimiter_StopIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Stop()
	rl.Stop()
}
