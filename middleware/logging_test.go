package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func TestRequestLogWritesStructuredLine(t *testing.T) {
	logger, buf := newTestLogger()
	handler := RequestLog(RequestLogConfig{Logger: logger})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/hello?name=go", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	line := buf.String()
	assert.Contains(t, line, "level=INFO")
	assert.Contains(t, line, "request completed")
	assert.Contains(t, line, "method=GET")
	assert.Contains(t, line, "path=/hello")
	assert.Contains(t, line, "status=200")
	assert.Contains(t, line, "query=name=go")
}

func TestRequestLogLevels(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		level   string
		message string
	}{
		{"server error", http.StatusInternalServerError, "level=ERROR", "request failed"},
		{"client error", http.StatusNotFound, "level=WARN", "request error"},
		{"success", http.StatusOK, "level=INFO", "request completed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger()
			handler := RequestLog(RequestLogConfig{Logger: logger})(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), tt.message)
		})
	}
}

func TestRequestLogSlowRequest(t *testing.T) {
	logger, buf := newTestLogger()
	handler := RequestLog(RequestLogConfig{Logger: logger, SlowThreshold: time.Nanosecond})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Contains(t, buf.String(), "slow request")
	assert.Contains(t, buf.String(), "slow_threshold")
}

func TestRequestLogSkipPaths(t *testing.T) {
	logger, buf := newTestLogger()
	handler := RequestLog(RequestLogConfig{Logger: logger, SkipPaths: []string{"/healthz"}})(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Empty(t, buf.String())
}

func TestRequestLogEchoesRequestID(t *testing.T) {
	logger, _ := newTestLogger()
	handler := chiMiddleware.RequestID(
		RequestLog(RequestLogConfig{Logger: logger})(okHandler()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
