package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ajayos/Server/internal/config"
)

func baseFileConfig() *config.Config {
	return &config.Config{
		Env: "production",
		HTTP: config.HTTPConfig{
			Port:            9100,
			Host:            "127.0.0.1",
			ShutdownTimeout: 5 * time.Second,
		},
		Middleware: config.MiddlewareConfig{
			CORS:         true,
			Helmet:       true,
			CookieParser: true,
			CookieSecret: "s3cret",
		},
		Log: config.LogConfig{Level: "info"},
	}
}

func TestBuildServerConfigMapsCoreFields(t *testing.T) {
	logger := slog.Default()

	got, err := buildServerConfig(baseFileConfig(), logger)
	require.NoError(t, err)

	assert.Equal(t, 9100, got.Port)
	assert.Equal(t, "127.0.0.1", got.Host)
	assert.Equal(t, "production", got.Env)
	assert.True(t, got.CORS)
	assert.True(t, got.Helmet)
	assert.False(t, got.BodyParser)
	assert.True(t, got.CookieParser)
	assert.Equal(t, "s3cret", got.CookieSecret)
	assert.Equal(t, 5*time.Second, got.ShutdownTimeout)
	assert.Same(t, logger, got.Logger)
	assert.Nil(t, got.TLS)
	assert.Nil(t, got.RequestLog)
	assert.Nil(t, got.Metrics)
	assert.Nil(t, got.Vitals)
	assert.Nil(t, got.RateLimit)
}

func TestBuildServerConfigWiresOptionalSections(t *testing.T) {
	cfg := baseFileConfig()
	cfg.Log.Requests = true
	cfg.TLS = config.TLSConfig{CertFile: "/certs/c.pem", KeyFile: "/certs/k.pem"}
	cfg.Metrics = config.MetricsConfig{Enabled: true, Namespace: "svc", Token: "scrape"}
	cfg.Vitals = config.VitalsConfig{Enabled: true, Path: "/vitals", Scope: "vitals:read"}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Limit: 10, Window: time.Second}

	got, err := buildServerConfig(cfg, slog.Default())
	require.NoError(t, err)

	require.NotNil(t, got.TLS)
	assert.Equal(t, "/certs/c.pem", got.TLS.CertFile)
	assert.Equal(t, "/certs/k.pem", got.TLS.KeyFile)

	require.NotNil(t, got.RequestLog)
	assert.Same(t, got.Logger, got.RequestLog.Logger)

	require.NotNil(t, got.Metrics)
	assert.Equal(t, "svc", got.Metrics.Namespace)
	assert.Equal(t, "http", got.Metrics.Subsystem)
	assert.Equal(t, "scrape", got.Metrics.Token)

	require.NotNil(t, got.Vitals)
	assert.Equal(t, "/vitals", got.Vitals.Path)
	assert.Empty(t, got.Vitals.SigningKey)

	require.NotNil(t, got.RateLimit)
	assert.Equal(t, 10, got.RateLimit.Limit)
	assert.Equal(t, time.Second, got.RateLimit.Window)
}

func TestBuildServerConfigGuardedVitalsNeedsKey(t *testing.T) {
	cfg := baseFileConfig()
	cfg.Vitals = config.VitalsConfig{Enabled: true, Guarded: true, Scope: "vitals:read"}

	_, err := buildServerConfig(cfg, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.signing_key")

	cfg.Auth.SigningKey = "k1"
	cfg.Auth.Issuer = "server"
	got, err := buildServerConfig(cfg, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, got.Vitals)
	assert.Equal(t, []byte("k1"), got.Vitals.SigningKey)
	assert.Equal(t, "server", got.Vitals.Issuer)
	assert.Equal(t, "vitals:read", got.Vitals.Scope)
}

func TestVitalsURLDerivation(t *testing.T) {
	cfg := baseFileConfig()
	assert.Equal(t, "http://127.0.0.1:9100/debug/vitals", vitalsURL(cfg))

	cfg.Vitals.Path = "/vitals"
	cfg.HTTP.Host = ""
	assert.Equal(t, "http://127.0.0.1:9100/vitals", vitalsURL(cfg))

	cfg.TLS = config.TLSConfig{CertFile: "/certs/c.pem", KeyFile: "/certs/k.pem"}
	assert.Equal(t, "https://127.0.0.1:9100/vitals", vitalsURL(cfg))
}
