// 文件路径: middleware/static.go
// 模块说明: 静态文件中间件，命中文件就返回，否则放行给后面的路由。
package middleware

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// StaticConfig 静态资源配置
type StaticConfig struct {
	Dir    string // 静态资源根目录
	Prefix string // URL 挂载前缀，默认 "/"
	Index  string // 目录请求回退的索引文件，默认 index.html
}

// DefaultStaticConfig 默认配置，挂载到根路径。
func DefaultStaticConfig(dir string) StaticConfig {
	return StaticConfig{Dir: dir, Prefix: "/", Index: "index.html"}
}

// Static 按前缀服务 Dir 下的文件。只处理 GET/HEAD；未命中文件或
// 目录没有索引文件时交给下一个 handler，路由与静态资源可以共存。
func Static(config StaticConfig) func(http.Handler) http.Handler {
	if config.Index == "" {
		config.Index = "index.html"
	}
	prefix := config.Prefix
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Dir == "" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
				next.ServeHTTP(w, r)
				return
			}
			if r.URL.Path != strings.TrimSuffix(prefix, "/") && !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			relative := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, strings.TrimSuffix(prefix, "/")), "/")
			clean := path.Clean(relative)
			if clean == "." {
				clean = ""
			}
			// Clean 之后仍以 .. 开头说明在尝试越出根目录。
			if clean == ".." || strings.HasPrefix(clean, "../") {
				http.NotFound(w, r)
				return
			}

			filePath := filepath.Join(config.Dir, filepath.FromSlash(clean))
			info, err := os.Stat(filePath)
			if err == nil && info.IsDir() {
				filePath = filepath.Join(filePath, config.Index)
				info, err = os.Stat(filePath)
			}
			if err != nil || info.IsDir() {
				next.ServeHTTP(w, r)
				return
			}

			f, err := os.Open(filePath)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			defer f.Close()
			// ServeFile 会把以 /index.html 结尾的请求 301 到 ./，
			// 这里已经定位到具体文件，直接喂内容。
			http.ServeContent(w, r, info.Name(), info.ModTime(), f)
		})
	}
}
