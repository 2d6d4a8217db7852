package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 按键冷却限流
// 防止登录接口和打印机控制指令被高频触发
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalLimiter = &CooldownLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *CooldownLimiter {
	return globalLimiter
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时顺带占用本次冷却窗口
// key: 限流键，如 "login:10.0.0.3" 或 "printer:5:control"
// interval: 冷却间隔
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== Gin 中间件 ====================

// RateLimit 按"路由名 + 客户端 IP"冷却限流
// name 用于区分同一个 IP 访问不同路由的情况
func RateLimit(name string, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := name + ":" + c.ClientIP()
		result := globalLimiter.Check(key, interval)
		if !result.Allowed {
			c.Header("Retry-After", result.RetryAfter.Round(time.Second).String())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":        429,
				"message":     "请求过于频繁，请稍后重试",
				"retry_after": result.RetryAfter.Seconds(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
