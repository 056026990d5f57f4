// 文件路径: internal/support/logging/console.go
// 模块说明: 彩色控制台日志 Handler，按级别着色，line 分隔符单独渲染。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const (
	separatorKey   = "log_separator"
	separatorWidth = 60
)

var (
	consoleColorMuted  = lipgloss.Color("#6B7280")
	consoleColorInfo   = lipgloss.Color("#22C55E")
	consoleColorWarn   = lipgloss.Color("#F59E0B")
	consoleColorDanger = lipgloss.Color("#EF4444")
	consoleColorDebug  = lipgloss.Color("#A78BFA")
	consoleColorBorder = lipgloss.Color("#374151")

	styleTime  = lipgloss.NewStyle().Foreground(consoleColorMuted)
	styleKey   = lipgloss.NewStyle().Foreground(consoleColorMuted)
	styleDebug = lipgloss.NewStyle().Foreground(consoleColorDebug)
	styleInfo  = lipgloss.NewStyle().Foreground(consoleColorInfo).Bold(true)
	styleWarn  = lipgloss.NewStyle().Foreground(consoleColorWarn).Bold(true)
	styleError = lipgloss.NewStyle().Foreground(consoleColorDanger).Bold(true)
	styleFatal = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(consoleColorDanger).Bold(true)
	styleRule  = lipgloss.NewStyle().Foreground(consoleColorBorder)
)

// Separator marks a record as a visual separator; the console handler draws
// a horizontal rule instead of the message.
func Separator() slog.Attr {
	return slog.Bool(separatorKey, true)
}

// ConsoleOptions configure the console handler.
type ConsoleOptions struct {
	Level      slog.Leveler
	TimeFormat string
	NoColor    bool
}

// ConsoleHandler renders records as single colored lines for humans.
type ConsoleHandler struct {
	opts   ConsoleOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

// NewConsoleHandler builds a handler writing to w.
func NewConsoleHandler(w io.Writer, opts *ConsoleOptions) *ConsoleHandler {
	var o ConsoleOptions
	if opts != nil {
		o = *opts
	}
	if o.TimeFormat == "" {
		o.TimeFormat = "15:04:05.000"
	}
	return &ConsoleHandler{opts: o, mu: &sync.Mutex{}, w: w}
}

// Enabled 判断级别是否达到输出门槛。
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

// WithAttrs 返回带有附加字段的新 Handler，原 Handler 不受影响。
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.clone()
	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		if prefix != "" && a.Key != "" {
			a.Key = prefix + "." + a.Key
		}
		h2.attrs = append(h2.attrs, a)
	}
	return h2
}

// WithGroup 记录分组名，后续字段的 key 会带上 "组名." 前缀。
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.groups = append(h2.groups, name)
	return h2
}

func (h *ConsoleHandler) clone() *ConsoleHandler {
	return &ConsoleHandler{
		opts:   h.opts,
		mu:     h.mu,
		w:      h.w,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

// Handle 把一条记录渲染成一行文本并写出。
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if recordIsSeparator(r) {
		b.WriteString(h.paint(styleRule, strings.Repeat("─", separatorWidth)))
		b.WriteByte('\n')
		return h.write(b.String())
	}

	if !r.Time.IsZero() {
		b.WriteString(h.paint(styleTime, r.Time.Format(h.opts.TimeFormat)))
		b.WriteByte(' ')
	}
	b.WriteString(h.levelBadge(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		h.appendAttr(&b, a, "")
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, a, prefix)
		return true
	})

	b.WriteByte('\n')
	return h.write(b.String())
}

func (h *ConsoleHandler) write(line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line)
	return err
}

func (h *ConsoleHandler) appendAttr(b *strings.Builder, a slog.Attr, prefix string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return
		}
		sub := prefix
		if a.Key != "" {
			if sub != "" {
				sub += "." + a.Key
			} else {
				sub = a.Key
			}
		}
		for _, ga := range group {
			h.appendAttr(b, ga, sub)
		}
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	val := a.Value.String()
	if strings.ContainsAny(val, " \t") {
		val = strconv.Quote(val)
	}
	b.WriteByte(' ')
	b.WriteString(h.paint(styleKey, key+"="))
	b.WriteString(val)
}

func (h *ConsoleHandler) levelBadge(level slog.Level) string {
	name := fmt.Sprintf("%-5s", LevelName(level))
	if h.opts.NoColor {
		return name
	}
	switch {
	case level >= LevelFatal:
		return styleFatal.Render(name)
	case level >= slog.LevelError:
		return styleError.Render(name)
	case level >= slog.LevelWarn:
		return styleWarn.Render(name)
	case level >= slog.LevelInfo:
		return styleInfo.Render(name)
	default:
		return styleDebug.Render(name)
	}
}

func (h *ConsoleHandler) paint(style lipgloss.Style, s string) string {
	if h.opts.NoColor {
		return s
	}
	return style.Render(s)
}

// LevelName 返回级别的展示名，fatal 高于 error。
func LevelName(level slog.Level) string {
	switch {
	case level >= LevelFatal:
		return "FATAL"
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func recordIsSeparator(r slog.Record) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == separatorKey && a.Value.Kind() == slog.KindBool && a.Value.Bool() {
			found = true
			return false
		}
		return true
	})
	return found
}
