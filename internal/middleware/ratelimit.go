package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/errors"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"github.com/soumyacodes007/social-media-backend/internal/util"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Sustained requests per second per key
	RequestsPerSecond float64
	// Burst allowance
	Burst int
	// Idle limiters are evicted after this long
	IdleTTL time.Duration
	// KeyFunc picks the bucket; defaults to the client IP
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig returns the API defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 20,
		Burst:             40,
		IdleTTL:           10 * time.Minute,
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	config   RateLimitConfig
	visitors map[string]*visitor
	mu       sync.Mutex
}

// NewRateLimiter creates a limiter. Call Middleware to use it.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{config: config, visitors: make(map[string]*visitor)}
}

// Allow reports whether key may make a request now
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiterFor(key, time.Now()).Allow()
}

func (rl *RateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Evict drops limiters idle since before now - IdleTTL and returns how many were removed
func (rl *RateLimiter) Evict(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.config.IdleTTL {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Middleware rejects requests over the limit with 429
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		limiter := rl.limiterFor(rl.config.KeyFunc(c), now)
		if limiter.AllowN(now, 1) {
			c.Next()
			return
		}

		retryAfter := 1
		if rl.config.RequestsPerSecond > 0 {
			retryAfter = int(math.Ceil(1 / rl.config.RequestsPerSecond))
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Burst))
		c.Header("X-RateLimit-Remaining", "0")
		metrics.RecordRateLimitExceeded("http")
		util.RespondWithAPIError(c, errors.RateLimited(""))
	}
}

// RateLimit returns a middleware with the given limits and starts idle eviction.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	rl := NewRateLimiter(config)
	go func() {
		ticker := time.NewTicker(rl.config.IdleTTL)
		defer ticker.Stop()
		for now := range ticker.C {
			rl.Evict(now)
		}
	}()
	return rl.Middleware()
}
