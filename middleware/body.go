// 文件路径: middleware/body.go
// 模块说明: 请求体中间件，限制大小并可选校验 Content-Type。
package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// BodyConfig 请求体配置
type BodyConfig struct {
	MaxBytes     int64    // 最大字节数
	AllowedTypes []string // 允许的 Content-Type；为空表示不限制
	SkipPaths    []string // 跳过的路径
}

// DefaultBodyConfig 默认配置（10MB，不限制类型）
func DefaultBodyConfig() BodyConfig {
	return BodyConfig{
		MaxBytes: 10 * 1024 * 1024,
	}
}

// RequestBody 请求体处理中间件。超限的读取由 http.MaxBytesReader 在
// handler 读取时报 413，类型不符则直接回 415。
func RequestBody(config BodyConfig) func(http.Handler) http.Handler {
	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultBodyConfig().MaxBytes
	}

	allowed := make(map[string]bool, len(config.AllowedTypes))
	for _, t := range config.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}
	skipPaths := newSkipSet(config.SkipPaths)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			if len(allowed) > 0 && requestHasBody(r) {
				mediaType := r.Header.Get("Content-Type")
				if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
					mediaType = parsed
				}
				if !allowed[strings.ToLower(mediaType)] {
					http.Error(w, "Unsupported media type", http.StatusUnsupportedMediaType)
					return
				}
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, config.MaxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestHasBody(r *http.Request) bool {
	if r.ContentLength > 0 {
		return true
	}
	// chunked 传输没有 Content-Length。
	return len(r.TransferEncoding) > 0
}
