// 文件路径: config.go
// 模块说明: 门面配置：一次性浅合并默认值、环境变量与 TLS 材料校验。
package server

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Ajayos/Server/internal/support/logging"
	"github.com/Ajayos/Server/middleware"
)

const (
	// DefaultPort is used when neither Config.Port nor the PORT
	// environment variable supplies one.
	DefaultPort = 8123

	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultShutdownTimeout = 10 * time.Second
)

// TLSConfig carries the listener's TLS material, either as file paths or
// as raw PEM blocks. Both halves of a pair are required.
type TLSConfig struct {
	CertFile string
	KeyFile  string
	CertPEM  []byte
	KeyPEM   []byte
}

// VitalsConfig enables the JSON diagnostics endpoint. When SigningKey is
// set the endpoint requires a JWT bearer token carrying Scope.
type VitalsConfig struct {
	Path       string // default /debug/vitals
	SigningKey []byte
	Issuer     string
	Scope      string // default vitals:read
}

// Config is the construction-time input of New. Every field is optional;
// unset fields fall back individually during the one-time merge.
type Config struct {
	// Port defaults to the PORT environment variable, then 8123.
	Port int
	// Host limits the bind address; empty means all interfaces.
	Host string
	// Env selects the environment mode ("development" or "production"),
	// read from APP_ENV/ENV when empty. Development enables CORS with
	// defaults unless configured otherwise.
	Env string

	// The four well-known middleware slots. A boolean activates the slot
	// with library defaults; the Options pointer activates it with the
	// given options. Slots compose in the fixed order
	// CORS → Helmet → BodyParser → CookieParser.
	CORS              bool
	CORSOptions       *middleware.CORSConfig
	Helmet            bool
	HelmetOptions     *middleware.SecureHeadersConfig
	BodyParser        bool
	BodyParserOptions *middleware.BodyConfig
	CookieParser      bool
	// CookieSecret enables signed-cookie verification for the cookie slot.
	CookieSecret string

	TLS *TLSConfig

	// OnServerStart runs once the listener is accepting connections.
	OnServerStart func(*Server)
	// OnServerError replaces the default bind-failure policy (warn, wait
	// five seconds, retry once) and also receives runtime listener faults.
	OnServerError func(error)

	// Logger is the injected logging capability. Defaults to the colored
	// console handler in development and JSON in production.
	Logger *slog.Logger

	// Optional middleware beyond the four slots.
	RequestLog *middleware.RequestLogConfig
	RateLimit  *middleware.RateLimitConfig
	Metrics    *middleware.MetricsConfig
	Vitals     *VitalsConfig

	// DisableHealth suppresses the built-in /healthz endpoint.
	DisableHealth bool
	// ShutdownTimeout bounds the graceful drain in Shutdown; default 10s.
	ShutdownTimeout time.Duration
}

// withDefaults merges the zero-value gaps exactly once, at construction.
func (c Config) withDefaults() (Config, error) {
	if c.Port == 0 {
		c.Port = portFromEnv()
	}
	if c.Port < 0 || c.Port > 65535 {
		return c, fmt.Errorf("%w: port %d out of range", ErrConfiguration, c.Port)
	}

	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = envFromEnv()
	}
	// 开发模式默认放开跨域，线上必须显式配置。
	if c.Env == EnvDevelopment && !c.CORS && c.CORSOptions == nil {
		c.CORS = true
	}

	if c.Logger == nil {
		c.Logger = defaultLogger(c.Env)
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	return c, nil
}

func defaultLogger(env string) *slog.Logger {
	if env == EnvProduction {
		return logging.New(logging.Options{Level: slog.LevelInfo, Format: "json"})
	}
	return logging.New(logging.Options{Level: slog.LevelDebug})
}

func portFromEnv() int {
	if raw := strings.TrimSpace(os.Getenv("PORT")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 && value <= 65535 {
			return value
		}
	}
	return DefaultPort
}

func envFromEnv() string {
	for _, key := range []string{"APP_ENV", "ENV"} {
		if raw := strings.ToLower(strings.TrimSpace(os.Getenv(key))); raw != "" {
			return raw
		}
	}
	return EnvDevelopment
}

// build parses the TLS material into a listener config. A nil receiver
// means plain TCP. Incomplete or unparsable material is a configuration
// error; no socket has been touched at this point.
func (t *TLSConfig) build() (*tls.Config, error) {
	if t == nil {
		return nil, nil
	}

	var (
		cert tls.Certificate
		err  error
	)
	switch {
	case t.CertFile != "" || t.KeyFile != "":
		if t.CertFile == "" || t.KeyFile == "" {
			return nil, fmt.Errorf("%w: tls requires both cert and key files", ErrConfiguration)
		}
		cert, err = tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: load tls keypair: %v", ErrConfiguration, err)
		}
	case len(t.CertPEM) > 0 || len(t.KeyPEM) > 0:
		if len(t.CertPEM) == 0 || len(t.KeyPEM) == 0 {
			return nil, fmt.Errorf("%w: tls requires both cert and key material", ErrConfiguration)
		}
		cert, err = tls.X509KeyPair(t.CertPEM, t.KeyPEM)
		if err != nil {
			return nil, fmt.Errorf("%w: parse tls keypair: %v", ErrConfiguration, err)
		}
	default:
		return nil, fmt.Errorf("%w: tls requires both cert and key", ErrConfiguration)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
