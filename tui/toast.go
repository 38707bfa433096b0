package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"custodash/styles"
)

const toastTTL = 4 * time.Second

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastSuccess
	toastError
)

type toast struct {
	id    int
	text  string
	level toastLevel
}

type toastExpiredMsg struct {
	id int
}

// showToast queues a transient notification and schedules its removal.
func (m *Model) showToast(text string, level toastLevel) tea.Cmd {
	m.toastID++
	id := m.toastID
	m.toasts = append(m.toasts, toast{id: id, text: text, level: level})

	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) expireToast(id int) {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

func (m Model) toastView() string {
	if len(m.toasts) == 0 {
		return ""
	}

	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		switch t.level {
		case toastError:
			lines = append(lines, styles.ToastErrorStyle.Render(t.text))
		case toastSuccess:
			lines = append(lines, styles.ToastSuccessStyle.Render(t.text))
		default:
			lines = append(lines, styles.ToastInfoStyle.Render(t.text))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
