package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// View 实现 tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// 头部
	header := styleHeader.Width(m.width).Render("  Server Vitals Monitor")
	b.WriteString(header)
	b.WriteString("\n\n")

	// 目标与连接状态
	b.WriteString(fmt.Sprintf("  Target: %s   %s%s", m.client.URL(), StatusIcon(m.status()), m.renderFreshness()))
	b.WriteString("\n\n")

	// 错误提示
	if m.err != nil {
		b.WriteString(styleDown.Render(fmt.Sprintf("  Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	// 加载提示
	if m.loading {
		b.WriteString(styleMuted().Render("  Loading..."))
		b.WriteString("\n\n")
	}

	if !m.fetched.IsZero() {
		b.WriteString(m.renderProcessBox())
		b.WriteString("\n")
		b.WriteString(m.renderMemoryBox())
		b.WriteString("\n")
		b.WriteString(m.renderInterfacesBox())
		b.WriteString("\n")
	}

	// 帮助提示
	help := styleHelp.Render("  [r] Refresh  [p] Pause  [q] Quit")
	b.WriteString(help)

	return b.String()
}

func (m Model) renderFreshness() string {
	if m.fetched.IsZero() {
		return ""
	}
	note := fmt.Sprintf("  updated %s ago", formatAge(time.Since(m.fetched)))
	if m.paused {
		note += "  (paused)"
	}
	return styleMuted().Render(note)
}

func (m Model) renderProcessBox() string {
	rows := []string{
		styleTitle.Render("Process"),
		"",
		labeled("Instance:", m.vitals.Instance),
		labeled("Env:", m.vitals.Env),
		labeled("Uptime:", m.vitals.Uptime),
		labeled("Goroutines:", fmt.Sprintf("%d", m.vitals.Goroutines)),
	}
	return styleBox.Width(m.boxWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderMemoryBox() string {
	mem := m.vitals.Memory

	heapPct := 0.0
	if mem.HeapTotal > 0 {
		heapPct = float64(mem.HeapUsed) / float64(mem.HeapTotal) * 100
	}

	barWidth := m.boxWidth() - 36
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 40 {
		barWidth = 40
	}

	rows := []string{
		styleTitle.Render("Memory"),
		"",
		labeled("RSS:", humanize.IBytes(mem.RSS)),
		labeled("Heap Total:", humanize.IBytes(mem.HeapTotal)),
		lipgloss.JoinHorizontal(lipgloss.Left,
			styleLabel.Render("Heap Used:"),
			styleValue.Render(fmt.Sprintf("%-10s", humanize.IBytes(mem.HeapUsed))),
			ProgressBar(heapPct, barWidth),
			styleMuted().Render(fmt.Sprintf(" %.0f%%", heapPct)),
		),
		labeled("External:", humanize.IBytes(mem.External)),
	}
	if len(m.heapHistory) > 1 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
			styleLabel.Render("Heap Trend:"),
			styleMuted().Render(sparkline(m.heapHistory, barWidth)),
		))
	}
	return styleBox.Width(m.boxWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderInterfacesBox() string {
	rows := []string{
		styleTitle.Render("Interfaces"),
		"",
	}
	if len(m.vitals.Interfaces) == 0 {
		rows = append(rows, styleMuted().Render("no active non-loopback interfaces"))
	} else {
		names := make([]string, 0, len(m.vitals.Interfaces))
		for name := range m.vitals.Interfaces {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			rows = append(rows, labeled(name+":", strings.Join(m.vitals.Interfaces[name], ", ")))
		}
	}
	return styleBox.Width(m.boxWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) boxWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	return w
}

func labeled(label, value string) string {
	if value == "" {
		value = "-"
	}
	return lipgloss.JoinHorizontal(lipgloss.Left,
		styleLabel.Render(label),
		styleValue.Render(value),
	)
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "0s"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline 用块字符画出窗口内的取值趋势，按窗口内最大值归一。
func sparkline(values []uint64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var max uint64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return strings.Repeat(string(sparkRunes[0]), len(values))
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v * uint64(len(sparkRunes)-1) / max)
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
