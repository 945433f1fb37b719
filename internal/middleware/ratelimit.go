package middleware

import (
	"net/http"
	"time"

	"academy/internal/metrics"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const maxTrackedClients = 10000

// RateLimiter hands out a token bucket per key (e.g. IP or user ID). The least recently seen
// keys are evicted once maxTrackedClients is reached.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *lru.Cache[string, *rate.Limiter]
}

// NewRateLimiter returns nil when requestsPerMinute is not positive, which disables limiting.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	clients, _ := lru.New[string, *rate.Limiter](maxTrackedClients)
	return &RateLimiter{
		limit:   rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:   burst,
		clients: clients,
	}
}

func (r *RateLimiter) Allow(key string) bool {
	if r == nil {
		return true
	}
	lim, ok := r.clients.Get(key)
	if !ok {
		lim = rate.NewLimiter(r.limit, r.burst)
		if prev, found, _ := r.clients.PeekOrAdd(key, lim); found {
			lim = prev
		}
	}
	return lim.Allow()
}

// RateLimit returns a middleware that limits by client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			metrics.RateLimited.Inc()
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
