package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ConciergeChat/internal/chatbot"
)

// toastDuration is how long a toast stays on screen.
const toastDuration = 4 * time.Second

type mountedMsg struct{ err error }

type sentMsg struct {
	sent bool
	err  error
}

type clearedMsg struct {
	toast chatbot.Toast
	err   error
}

type refreshedMsg struct{ err error }

type dismissToastMsg struct{ seq int }

func (m Model) mountCmd() tea.Cmd {
	bot, ctx := m.bot, m.ctx
	return func() tea.Msg {
		return mountedMsg{err: bot.Mount(ctx)}
	}
}

func (m Model) sendCmd(raw string) tea.Cmd {
	bot, ctx := m.bot, m.ctx
	return func() tea.Msg {
		sent, err := bot.Send(ctx, raw)
		return sentMsg{sent: sent, err: err}
	}
}

func (m Model) clearCmd() tea.Cmd {
	bot, ctx := m.bot, m.ctx
	return func() tea.Msg {
		toast, err := bot.Clear(ctx)
		return clearedMsg{toast: toast, err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	bot, ctx := m.bot, m.ctx
	return func() tea.Msg {
		return refreshedMsg{err: bot.Refresh(ctx)}
	}
}

// showToast replaces the current toast and schedules its dismissal.
func (m *Model) showToast(t chatbot.Toast) tea.Cmd {
	m.toast = &t
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return dismissToastMsg{seq: seq}
	})
}

func (m *Model) showError(err error) tea.Cmd {
	return m.showToast(m.bot.ErrorToast(err))
}
