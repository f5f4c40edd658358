package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerSecond: 0.001,
		Burst:             3,
	})

	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "4th request should be rate limited")
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerSecond: 0.001,
		Burst:             1,
		KeyFunc:           func(c *gin.Context) string { return c.GetHeader("X-Client") },
	})
	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	request := func(client string) int {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Client", client)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, request("a"))
	assert.Equal(t, http.StatusTooManyRequests, request("a"))
	assert.Equal(t, http.StatusNoContent, request("b"))
	assert.Equal(t, 2, limiter.Len())
}

func TestRateLimiterEvictsIdleKeys(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute})
	limiter.Allow("a")
	limiter.Allow("b")

	assert.Equal(t, 0, limiter.Evict(time.Now()))
	assert.Equal(t, 2, limiter.Evict(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, limiter.Len())
}
