// 文件路径: middleware/auth.go
// 模块说明: 鉴权中间件：Basic、静态 Bearer 与 JWT Bearer 三种守卫。
package middleware

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/Ajayos/Server/internal/auth/token"
	"github.com/Ajayos/Server/internal/support/hash"
)

// BasicAuthConfig Basic 认证配置
type BasicAuthConfig struct {
	Users  map[string]string // 用户名 → bcrypt 哈希
	Realm  string
	Hasher hash.Hasher
}

// BasicAuth 校验 Basic 认证头，密码一律按 bcrypt 哈希比对。
func BasicAuth(config BasicAuthConfig) func(http.Handler) http.Handler {
	if config.Realm == "" {
		config.Realm = "restricted"
	}
	hasher := config.Hasher
	if hasher == nil {
		hasher = hash.MustBcryptHasher(0)
	}
	// 未知用户也要消耗一次比较，避免用时间差探测用户名。
	dummy, _ := hasher.Hash("basic-auth-timing-pad")

	challenge := func(w http.ResponseWriter) {
		w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", config.Realm))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				challenge(w)
				return
			}
			stored, found := config.Users[user]
			if !found {
				_ = hasher.Compare(dummy, pass)
				challenge(w)
				return
			}
			if err := hasher.Compare(stored, pass); err != nil {
				challenge(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StaticBearer 校验固定的 Bearer 口令，适合 /metrics 这类内部端点。
func StaticBearer(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" || subtle.ConstantTimeCompare([]byte(raw), []byte(secret)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerAuthConfig JWT Bearer 配置
type BearerAuthConfig struct {
	Manager *token.Manager
	Scope   string // 非空时要求令牌的 scope 列表包含该值
}

type claimsContextKey struct{}

// BearerAuth 校验 JWT Bearer 令牌，并把声明放进请求上下文。
func BearerAuth(config BearerAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" || config.Manager == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := config.Manager.Parse(raw)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !claims.HasScope(config.Scope) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenClaims 取出 BearerAuth 解析后的声明。
func TokenClaims(r *http.Request) (*token.Claims, bool) {
	claims, ok := r.Context().Value(claimsContextKey{}).(*token.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}
