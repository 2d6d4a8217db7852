package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== CooldownLimiter ====================

func TestCooldownLimiterBlocksWithinInterval(t *testing.T) {
	limiter := &CooldownLimiter{}

	first := limiter.Check("login:1.2.3.4", time.Minute)
	assert.True(t, first.Allowed)

	second := limiter.Check("login:1.2.3.4", time.Minute)
	assert.False(t, second.Allowed)
	assert.Greater(t, second.RetryAfter, time.Duration(0))

	// 不同键互不影响
	other := limiter.Check("login:5.6.7.8", time.Minute)
	assert.True(t, other.Allowed)
}

func TestCooldownLimiterAllowsAfterInterval(t *testing.T) {
	limiter := &CooldownLimiter{}

	assert.True(t, limiter.Check("k", 10*time.Millisecond).Allowed)
	time.Sleep(15 * time.Millisecond)
	assert.True(t, limiter.Check("k", 10*time.Millisecond).Allowed)
}

func TestCooldownLimiterReset(t *testing.T) {
	limiter := &CooldownLimiter{}

	assert.True(t, limiter.Check("k", time.Minute).Allowed)
	limiter.Reset("k")
	assert.True(t, limiter.Check("k", time.Minute).Allowed)
}

// ==================== Gin 中间件 ====================

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit("test-login", time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// 冷却期内的第二次请求被拒
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
