// 文件路径: internal/support/logging/logger.go
// 模块说明: 这是 internal 模块里的 logger 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// LevelFatal sits above slog.LevelError; records at this level describe
// conditions the caller is expected to stop on.
const LevelFatal = slog.Level(12)

// Options customize the slog logger construction.
type Options struct {
	Level     slog.Level
	Format    string
	AddSource bool
	NoColor   bool
}

// New returns a slog.Logger configured according to options. The default
// format is the colored console handler; "json" and "text" select the
// stdlib handlers for machine-readable output.
func New(opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level, AddSource: opts.AddSource}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	case "text":
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	default:
		handler = NewConsoleHandler(os.Stdout, &ConsoleOptions{Level: opts.Level, NoColor: opts.NoColor})
	}

	return slog.New(handler)
}

// ParseLevel maps a config string onto a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "fatal":
		return LevelFatal
	default:
		return slog.LevelInfo
	}
}
