// 文件路径: middleware/cookies.go
// 模块说明: Cookie 解析中间件，支持 HMAC 签名 Cookie 的校验。
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
)

// CookiesConfig Cookie 中间件配置
type CookiesConfig struct {
	Secret string // 签名密钥；为空时签名 Cookie 原样透传
}

// 签名 Cookie 的线格式: "s:<明文>.<base64url(HMAC-SHA256)>"。
const signedCookiePrefix = "s:"

type cookieContextKey struct{}

// Cookies 解析请求中的 Cookie 到请求上下文。配置了 Secret 时，
// 签名 Cookie 校验通过后以明文存入，签名不符的直接丢弃。
func Cookies(config CookiesConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			values := make(map[string]string)
			for _, c := range r.Cookies() {
				val := c.Value
				if unescaped, err := url.QueryUnescape(val); err == nil {
					val = unescaped
				}
				if strings.HasPrefix(val, signedCookiePrefix) && config.Secret != "" {
					plain, ok := VerifyCookie(val, config.Secret)
					if !ok {
						continue
					}
					values[c.Name] = plain
					continue
				}
				values[c.Name] = val
			}
			ctx := context.WithValue(r.Context(), cookieContextKey{}, values)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SignCookie 生成带签名的 Cookie 值，供 handler 写回响应时使用。
func SignCookie(value, secret string) string {
	return signedCookiePrefix + value + "." + cookieMAC(value, secret)
}

// VerifyCookie 校验签名 Cookie，返回明文和校验结果。
func VerifyCookie(raw, secret string) (string, bool) {
	if !strings.HasPrefix(raw, signedCookiePrefix) {
		return "", false
	}
	rest := raw[len(signedCookiePrefix):]
	// 明文本身可能含 "."，签名在最后一个分隔符之后。
	i := strings.LastIndexByte(rest, '.')
	if i < 0 {
		return "", false
	}
	value, sig := rest[:i], rest[i+1:]
	if hmac.Equal([]byte(sig), []byte(cookieMAC(value, secret))) {
		return value, true
	}
	return "", false
}

// CookieValue 读取中间件解析出的 Cookie；中间件未挂载时退回原始请求头。
func CookieValue(r *http.Request, name string) (string, bool) {
	if values, ok := r.Context().Value(cookieContextKey{}).(map[string]string); ok {
		v, found := values[name]
		return v, found
	}
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

func cookieMAC(value, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
