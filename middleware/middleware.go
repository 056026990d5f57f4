// Package middleware provides the HTTP middleware toolbox the server
// facade mounts: CORS, security headers, request-body limits, cookie
// parsing, static files, rate limiting, request logging, Prometheus
// metrics, and auth guards. Every component follows the same shape: a
// Config struct with a Default constructor and a factory returning
// func(http.Handler) http.Handler.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

func newSkipSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}

// ClientIP 获取客户端真实 IP；只有来自可信代理的连接才信任转发头。
func ClientIP(r *http.Request) string {
	remoteIP := parseIP(r.RemoteAddr)
	if remoteIP == "" {
		return ""
	}
	if !isTrustedProxy(remoteIP) {
		return remoteIP
	}

	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return remoteIP
}

func parseIP(addr string) string {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(trimmed); err == nil {
		return host
	}
	return trimmed
}

func isTrustedProxy(remoteIP string) bool {
	if remoteIP == "127.0.0.1" || remoteIP == "::1" {
		return true
	}
	if strings.HasPrefix(remoteIP, "10.") || strings.HasPrefix(remoteIP, "192.168.") {
		return true
	}
	if strings.HasPrefix(remoteIP, "172.") {
		parts := strings.Split(remoteIP, ".")
		if len(parts) > 1 {
			if second, err := strconv.Atoi(parts[1]); err == nil && second >= 16 && second <= 31 {
				return true
			}
		}
	}
	return false
}
