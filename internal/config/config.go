// 文件路径: internal/config/config.go
// 模块说明: 这是 internal 模块里的 config 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package config

import (
	"time"
)

// Config 汇总 CLI 进程的全部文件配置。
type Config struct {
	Env        string           `mapstructure:"env"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Middleware MiddlewareConfig `mapstructure:"middleware"`
	TLS        TLSConfig        `mapstructure:"tls"`
	Log        LogConfig        `mapstructure:"log"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Vitals     VitalsConfig     `mapstructure:"vitals"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Static     []StaticMount    `mapstructure:"static"`
	Jobs       JobsConfig       `mapstructure:"jobs"`

	// Source 记录实际读到的配置文件路径，没有文件时为空。
	Source string `mapstructure:"-"`
}

// HTTPConfig 定义 HTTP 监听配置。
type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MiddlewareConfig 定义内置中间件的开关。
type MiddlewareConfig struct {
	CORS         bool   `mapstructure:"cors"`
	Helmet       bool   `mapstructure:"helmet"`
	BodyParser   bool   `mapstructure:"body_parser"`
	CookieParser bool   `mapstructure:"cookie_parser"`
	CookieSecret string `mapstructure:"cookie_secret"`
}

// TLSConfig 定义证书文件配置。
type TLSConfig struct {
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// Present 表示证书配置至少写了一半；半套配置也原样往下传，由服务器报错。
func (c TLSConfig) Present() bool {
	return c.CertFile != "" || c.KeyFile != ""
}

// LogConfig 定义日志配置。Requests 控制要不要记每条请求的访问日志。
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
	NoColor   bool   `mapstructure:"no_color"`
	Requests  bool   `mapstructure:"requests"`
}

// AuthConfig 定义诊断接口令牌和口令哈希的配置。
type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	Leeway     time.Duration `mapstructure:"leeway"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// MetricsConfig 定义 Prometheus 指标配置。
type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Subsystem string    `mapstructure:"subsystem"`
	Token     string    `mapstructure:"token"`
	Buckets   []float64 `mapstructure:"buckets"`
}

// VitalsConfig 定义运行指标接口配置。Guarded 打开时用 auth.signing_key
// 给接口加 Bearer 鉴权。
type VitalsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Guarded bool   `mapstructure:"guarded"`
	Scope   string `mapstructure:"scope"`
}

// RateLimitConfig 定义限流配置。
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// StaticMount 定义一个静态目录挂载。
type StaticMount struct {
	Prefix string `mapstructure:"prefix"`
	Dir    string `mapstructure:"dir"`
}

// JobsConfig 定义后台任务配置。VitalsEvery 是 cron 表达式，空串表示不跑。
type JobsConfig struct {
	VitalsEvery string        `mapstructure:"vitals_every"`
	Timeout     time.Duration `mapstructure:"timeout"`
}
