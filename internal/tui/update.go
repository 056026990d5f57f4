package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case vitalsMsg:
		m.loading = false
		m.err = nil
		m.vitals = msg.vitals
		m.fetched = time.Now()
		m.heapHistory = append(m.heapHistory, msg.vitals.Memory.HeapUsed)
		if len(m.heapHistory) > historySize {
			m.heapHistory = m.heapHistory[len(m.heapHistory)-historySize:]
		}
		return m, nil

	case errorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tickMsg:
		// 暂停时只维持节拍，不发请求
		if m.paused {
			return m, m.tickCmd()
		}
		return m, tea.Batch(m.fetchVitals(), m.tickCmd())
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.fetchVitals()

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		return m, nil
	}

	return m, nil
}
