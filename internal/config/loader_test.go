package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearInheritedEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "ENV", "APP_ENV", "SERVER_ENV", "SERVER_HTTP_PORT"} {
		t.Setenv(key, "")
	}
}

// chdir switches to dir for the duration of the test, mirroring
// testing.T.Chdir which needs a newer Go toolchain.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearInheritedEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Source)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8123, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Log.Requests)
	assert.Equal(t, "server", cfg.Auth.Issuer)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.Auth.Leeway)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "/debug/vitals", cfg.Vitals.Path)
	assert.Equal(t, "vitals:read", cfg.Vitals.Scope)
	assert.Equal(t, 60, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 30*time.Second, cfg.Jobs.Timeout)
	assert.False(t, cfg.TLS.Present())
}

func TestLoadReadsYAMLDocument(t *testing.T) {
	clearInheritedEnv(t)
	path := writeConfigFile(t, t.TempDir(), `
env: production
http:
  port: 9000
  host: 127.0.0.1
  shutdown_timeout: 5s
middleware:
  cors: true
  helmet: true
  cookie_secret: top-secret
tls:
  cert_file: /etc/ssl/server.crt
  key_file: /etc/ssl/server.key
log:
  level: warn
  format: json
  requests: false
auth:
  signing_key: k1
metrics:
  enabled: true
  token: scrape-me
vitals:
  enabled: true
  guarded: true
static:
  - prefix: /assets
    dir: ./public
  - prefix: /docs
    dir: ./docs
jobs:
  vitals_every: "@every 1m"
  timeout: 12s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, "127.0.0.1", cfg.HTTP.Host)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.True(t, cfg.Middleware.CORS)
	assert.True(t, cfg.Middleware.Helmet)
	assert.False(t, cfg.Middleware.BodyParser)
	assert.Equal(t, "top-secret", cfg.Middleware.CookieSecret)
	assert.True(t, cfg.TLS.Present())
	assert.Equal(t, "/etc/ssl/server.crt", cfg.TLS.CertFile)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Log.Requests)
	assert.Equal(t, "k1", cfg.Auth.SigningKey)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "scrape-me", cfg.Metrics.Token)
	assert.True(t, cfg.Vitals.Enabled)
	assert.True(t, cfg.Vitals.Guarded)
	require.Len(t, cfg.Static, 2)
	assert.Equal(t, "/assets", cfg.Static[0].Prefix)
	assert.Equal(t, "./public", cfg.Static[0].Dir)
	assert.Equal(t, "/docs", cfg.Static[1].Prefix)
	assert.Equal(t, "@every 1m", cfg.Jobs.VitalsEvery)
	assert.Equal(t, 12*time.Second, cfg.Jobs.Timeout)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearInheritedEnv(t)
	path := writeConfigFile(t, t.TempDir(), "http:\n  port: 9000\nlog:\n  level: info\n")
	t.Setenv("SERVER_HTTP_PORT", "9444")
	t.Setenv("SERVER_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9444, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLegacyEnvironmentAliases(t *testing.T) {
	clearInheritedEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("PORT", "7777")
	t.Setenv("ENV", "staging")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_KEY", "legacy-signing-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.HTTP.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "legacy-signing-key", cfg.Auth.SigningKey)
}

func TestDotEnvBackfillsLegacyKeys(t *testing.T) {
	clearInheritedEnv(t)
	dir := t.TempDir()
	body := "PORT=6543\nENV=staging\nAPP_ENV=production\nCOOKIE_SECRET=dotenv-secret\nTLS_CERT_FILE=/certs/a.pem\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(body), 0o644))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 6543, cfg.HTTP.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "dotenv-secret", cfg.Middleware.CookieSecret)
	assert.Equal(t, "/certs/a.pem", cfg.TLS.CertFile)
	assert.True(t, cfg.TLS.Present())
}

func TestSnapshotContainsMergedKeys(t *testing.T) {
	clearInheritedEnv(t)
	path := writeConfigFile(t, t.TempDir(), "http:\n  port: 9000\n")

	settings, err := Snapshot(path)
	require.NoError(t, err)

	httpSection, ok := settings["http"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 9000, httpSection["port"])
	assert.Contains(t, settings, "log")
	assert.Contains(t, settings, "auth")
	assert.Contains(t, settings, "vitals")
}
