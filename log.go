// 文件路径: log.go
// 模块说明: 彩色控制台日志便捷入口，把简单的“写一行”请求翻译成 slog 调用。
package server

import (
	"context"
	"log/slog"

	"github.com/Ajayos/Server/internal/support/logging"
)

// LogKind selects the rendering of a Log call.
type LogKind string

const (
	LogInfo  LogKind = "info"
	LogWarn  LogKind = "warn"
	LogError LogKind = "error"
	LogDebug LogKind = "debug"
	LogFatal LogKind = "fatal"
	// LogLine prints a horizontal separator; the text argument is ignored.
	LogLine LogKind = "line"
)

// Log writes a single line through the server's logger, color-coded by
// kind on the console handler. Unrecognized kinds fall back to info.
// LogFatal only classifies the line; it never terminates the process.
func (s *Server) Log(text string, kind ...LogKind) {
	selected := LogInfo
	if len(kind) > 0 {
		selected = kind[0]
	}

	ctx := context.Background()
	switch selected {
	case LogLine:
		s.logger.LogAttrs(ctx, slog.LevelInfo, "", logging.Separator())
	case LogWarn:
		s.logger.Warn(text)
	case LogError:
		s.logger.Error(text)
	case LogDebug:
		s.logger.Debug(text)
	case LogFatal:
		s.logger.Log(ctx, logging.LevelFatal, text)
	default:
		s.logger.Info(text)
	}
}

// Logger exposes the injected logger so callers can attach their own
// attributes or hand it to other components.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}
