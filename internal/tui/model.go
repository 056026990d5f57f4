package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ajayos/Server/internal/sysinfo"
)

// historySize 是堆内存趋势保留的采样点数
const historySize = 60

// Model 是 top 仪表盘的主模型
type Model struct {
	// 轮询
	client   *Client
	interval time.Duration
	paused   bool

	// 数据
	vitals  sysinfo.Vitals
	fetched time.Time

	// 最近若干次的堆内存占用，画趋势用
	heapHistory []uint64

	// 终端尺寸
	width  int
	height int

	// 状态
	loading bool
	err     error

	// 按键绑定
	keys keyMap
}

// keyMap 定义全部按键绑定
type keyMap struct {
	Refresh key.Binding
	Pause   key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "pause"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// NewModel 创建仪表盘模型；interval 是轮询周期，零值用 2 秒。
func NewModel(client *Client, interval time.Duration) Model {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return Model{
		client:   client,
		interval: interval,
		keys:     defaultKeyMap(),
		loading:  true,
	}
}

// Init 实现 tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchVitals(),
		m.tickCmd(),
	)
}

// 消息类型

type vitalsMsg struct {
	vitals sysinfo.Vitals
}

type errorMsg struct {
	err error
}

type tickMsg time.Time

// 命令

func (m Model) fetchVitals() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		vitals, err := client.Fetch(ctx)
		if err != nil {
			return errorMsg{err: err}
		}
		return vitalsMsg{vitals: vitals}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// 辅助函数

// status 把最近一次抓取的结果折算成连接状态。
func (m Model) status() string {
	switch {
	case m.err != nil:
		return "down"
	case m.fetched.IsZero():
		return "unknown"
	case time.Since(m.fetched) > 3*m.interval:
		return "stale"
	default:
		return "up"
	}
}
