// 文件路径: internal/config/loader.go
// 模块说明: 这是 internal 模块里的 loader 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load 按 默认值 < 配置文件 < .env < 环境变量 的顺序合并配置。
// path 非空时只读指定文件，文件缺失算错误；为空时在标准位置搜索，
// 搜不到就靠默认值和环境变量。
func Load(path string) (*Config, error) {
	v, source, err := build(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Source = source
	return &cfg, nil
}

// Snapshot 返回合并后的全部键值，config 子命令拿它打印生效配置。
func Snapshot(path string) (map[string]any, error) {
	v, _, err := build(path)
	if err != nil {
		return nil, err
	}
	return v.AllSettings(), nil
}

func build(path string) (*viper.Viper, string, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/server/")
	}

	v.SetEnvPrefix("SERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("http.port", "SERVER_HTTP_PORT", "PORT"); err != nil {
		return nil, "", fmt.Errorf("bind env http.port: %w", err)
	}
	if err := v.BindEnv("env", "SERVER_ENV", "APP_ENV", "ENV"); err != nil {
		return nil, "", fmt.Errorf("bind env env: %w", err)
	}
	if err := v.BindEnv("middleware.cookie_secret", "SERVER_MIDDLEWARE_COOKIE_SECRET", "COOKIE_SECRET"); err != nil {
		return nil, "", fmt.Errorf("bind env middleware.cookie_secret: %w", err)
	}
	if err := v.BindEnv("auth.signing_key", "SERVER_AUTH_SIGNING_KEY", "APP_KEY"); err != nil {
		return nil, "", fmt.Errorf("bind env auth.signing_key: %w", err)
	}

	source := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, "", fmt.Errorf("read config: %w", err)
		}
	} else {
		source = v.ConfigFileUsed()
	}

	if err := loadDotEnv(v); err != nil {
		return nil, "", err
	}

	return v, source, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("http.port", 8123)
	v.SetDefault("http.host", "")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("middleware.cors", false)
	v.SetDefault("middleware.helmet", false)
	v.SetDefault("middleware.body_parser", false)
	v.SetDefault("middleware.cookie_parser", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.add_source", false)
	v.SetDefault("log.requests", true)

	v.SetDefault("auth.issuer", "server")
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("auth.leeway", "30s")
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "server")
	v.SetDefault("metrics.subsystem", "http")

	v.SetDefault("vitals.enabled", false)
	v.SetDefault("vitals.path", "/debug/vitals")
	v.SetDefault("vitals.scope", "vitals:read")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.limit", 60)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("jobs.timeout", "30s")
}

func loadDotEnv(v *viper.Viper) error {
	candidates := []string{".", "..", "../.."}
	for _, dir := range candidates {
		file := filepath.Clean(filepath.Join(dir, ".env"))
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat .env: %w", err)
		}

		// .env 用独立的 viper 实例读，避免键类型混进主配置。
		envViper := viper.New()
		envViper.SetConfigFile(file)
		envViper.SetConfigType("env")
		if err := envViper.ReadInConfig(); err != nil {
			return fmt.Errorf("read .env: %w", err)
		}

		bindLegacyEnv(v, envViper)
	}
	return nil
}

// bindLegacyEnv 把旧版扁平键翻译成分层结构。条目顺序就是覆盖顺序，
// 排在后面的赢，所以 APP_ENV 在 ENV 之后。注意 Set 的优先级高于
// 真实环境变量，.env 里的旧键会压过同名进程变量。
func bindLegacyEnv(target *viper.Viper, source *viper.Viper) {
	mappings := []struct {
		legacy string
		key    string
	}{
		{"PORT", "http.port"},
		{"HOST", "http.host"},
		{"SHUTDOWN_TIMEOUT", "http.shutdown_timeout"},
		{"ENV", "env"},
		{"APP_ENV", "env"},
		{"COOKIE_SECRET", "middleware.cookie_secret"},
		{"LOG_LEVEL", "log.level"},
		{"LOG_FORMAT", "log.format"},
		{"LOG_ADD_SOURCE", "log.add_source"},
		{"TLS_CERT_FILE", "tls.cert_file"},
		{"TLS_KEY_FILE", "tls.key_file"},
		{"APP_KEY", "auth.signing_key"},
		{"AUTH_SIGNING_KEY", "auth.signing_key"},
		{"AUTH_TOKEN_TTL", "auth.token_ttl"},
		{"METRICS_TOKEN", "metrics.token"},
	}

	for _, m := range mappings {
		if val := source.GetString(m.legacy); val != "" {
			target.Set(m.key, val)
		}
	}
}
