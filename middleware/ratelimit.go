// 文件路径: middleware/ratelimit.go
// 模块说明: 固定窗口限流中间件，计数器放在共享缓存里。
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Ajayos/Server/internal/cache"
)

// RateLimitConfig Rate Limit 配置
type RateLimitConfig struct {
	Limit     int                        // 每个窗口的请求数
	Window    time.Duration              // 时间窗口
	KeyFunc   func(*http.Request) string // 获取限流 key 的函数
	SkipPaths []string                   // 跳过限流的路径
	Store     cache.Store                // 计数器存储；为空时自动建一个内存实例
}

// DefaultRateLimitConfig 默认配置
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     60,
		Window:    time.Minute,
		KeyFunc:   ClientIP,
		SkipPaths: []string{"/health", "/healthz", "/_internal/ready"},
	}
}

// RateLimit 固定窗口限流中间件。窗口起点由第一次计数决定，
// 后续请求不刷新 TTL，所以热点 key 不会把窗口无限续命。
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	if config.Limit <= 0 {
		config.Limit = 60
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.KeyFunc == nil {
		config.KeyFunc = ClientIP
	}
	store := config.Store
	if store == nil {
		store = cache.NewStore(cache.Options{DefaultTTL: config.Window, CleanupInterval: config.Window})
	}
	store = store.Namespace("ratelimit")
	skipPaths := newSkipSet(config.SkipPaths)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := config.KeyFunc(r)
			count, err := store.Increment(r.Context(), key, 1, config.Window)
			if err != nil {
				// 计数失败时放行，限流器故障不应拖垮业务请求。
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(config.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			ttl, ok := store.TTL(r.Context(), key)
			if !ok {
				ttl = config.Window
			}
			resetAt := time.Now().Add(ttl)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if count > int64(config.Limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
