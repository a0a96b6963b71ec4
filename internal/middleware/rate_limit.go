// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/modaline/shop-backend/internal/config"
	"github.com/modaline/shop-backend/internal/utils"
)

// RateLimiter tracks one token bucket per client IP. Buckets refill one token
// per interval up to burst; idle buckets are swept so the map stays bounded.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*clientBucket
	interval time.Duration
	burst    int
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const idleBucketTTL = 3 * time.Minute

func NewRateLimiter(interval time.Duration, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*clientBucket),
		interval: interval,
		burst:    burst,
	}

	go rl.sweep()

	return rl
}

func (rl *RateLimiter) sweep() {
	for range time.Tick(time.Minute) {
		rl.mu.Lock()
		for ip, b := range rl.buckets {
			if time.Since(b.lastSeen) > idleBucketTTL {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[ip]
	if !exists {
		b = &clientBucket{limiter: rate.NewLimiter(rate.Every(rl.interval), rl.burst)}
		rl.buckets[ip] = b
	}
	b.lastSeen = time.Now()

	return b.limiter.Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			utils.FailResponse(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GeneralRateLimit guards every route; auth and upload get tighter,
// slower-refilling buckets of their own.

func GeneralRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return NewRateLimiter(time.Second, cfg.GeneralBurst).Middleware()
}

func AuthRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return NewRateLimiter(time.Minute, cfg.AuthBurst).Middleware()
}

func UploadRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return NewRateLimiter(time.Minute, cfg.UploadBurst).Middleware()
}
