package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit returns per-API-key rate limiting middleware using token buckets.
// Each key gets a bucket that fills at rps tokens per second up to burst
// tokens; a request with an empty bucket is rejected with 429. Generation
// requests are expensive, so the limits here are deliberately low.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		key, exists := c.Get("api_key")
		if !exists {
			// No API key means auth middleware didn't run — allow through
			c.Next()
			return
		}

		apiKey := key.(string)

		mu.Lock()
		limiter, exists := limiters[apiKey]
		if !exists {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[apiKey] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
