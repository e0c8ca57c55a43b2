package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ConciergeChat/internal/chatbot"
	"ConciergeChat/internal/i18n"
	"ConciergeChat/internal/session"
)

type styles struct {
	title       lipgloss.Style
	subtitle    lipgloss.Style
	userBubble  lipgloss.Style
	assistant   lipgloss.Style
	meta        lipgloss.Style
	welcome     lipgloss.Style
	input       lipgloss.Style
	hint        lipgloss.Style
	modal       lipgloss.Style
	menuItem    lipgloss.Style
	menuActive  lipgloss.Style
	toast       lipgloss.Style
	toastDanger lipgloss.Style
}

func defaultStyles() styles {
	gold := lipgloss.AdaptiveColor{Light: "#8A6D1D", Dark: "#D4AF37"}
	muted := lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8C8C8C"}
	return styles{
		title:       lipgloss.NewStyle().Bold(true).Foreground(gold),
		subtitle:    lipgloss.NewStyle().Foreground(muted),
		userBubble:  lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1F4E79")),
		assistant:   lipgloss.NewStyle().Padding(0, 1),
		meta:        lipgloss.NewStyle().Foreground(muted).Italic(true).Padding(0, 1),
		welcome:     lipgloss.NewStyle().Foreground(muted).Italic(true),
		input:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(gold).Padding(0, 1),
		hint:        lipgloss.NewStyle().Foreground(muted),
		modal:       lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(gold).Padding(1, 2),
		menuItem:    lipgloss.NewStyle().PaddingLeft(2),
		menuActive:  lipgloss.NewStyle().PaddingLeft(2).Bold(true).Foreground(gold),
		toast:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E7D32")),
		toastDanger: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C62828")),
	}
}

// bubbleWidth is the widest a single message may render.
func (m Model) bubbleWidth() int {
	w := m.viewport.Width * 3 / 4
	if w < 16 {
		w = 16
	}
	return w
}

func (m Model) View() string {
	if !m.ready {
		return "\n  " + m.spinner.View() + " " + m.prefs.T(i18n.HotelName)
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.bodyView())
	b.WriteString("\n")
	b.WriteString(m.toastView())
	b.WriteString("\n")
	b.WriteString(m.inputView())
	b.WriteString("\n")
	b.WriteString(m.styles.hint.Render(m.prefs.T(i18n.KeyHints)))
	return b.String()
}

func (m Model) headerView() string {
	left := m.styles.title.Render(m.prefs.T(i18n.HotelName)) + " " +
		m.styles.subtitle.Render("· "+m.prefs.T(i18n.VirtualConcierge))
	right := m.styles.subtitle.Render(m.prefs.Language().Label())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right + "\n" +
		m.styles.subtitle.Render(strings.Repeat("─", max(m.width, 1)))
}

func (m Model) bodyView() string {
	switch m.overlay {
	case overlayQR:
		return m.placeInBody(m.qrView())
	case overlayLanguage:
		return m.placeInBody(m.languageMenuView())
	}
	if !m.mounted {
		return m.placeInBody(m.spinner.View())
	}
	return m.viewport.View()
}

func (m Model) placeInBody(content string) string {
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) qrView() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.title.Render(m.prefs.T(i18n.ScanToChat)),
		"",
		m.qrCode,
		"",
		m.styles.subtitle.Render(m.qrTarget),
		m.styles.hint.Render(m.prefs.T(i18n.CloseHint)),
	)
	return m.styles.modal.Render(body)
}

func (m Model) languageMenuView() string {
	current := m.prefs.Language()
	lines := []string{m.styles.title.Render(m.prefs.T(i18n.SelectLanguage)), ""}
	for i, lang := range i18n.Languages() {
		marker := " "
		if lang == current {
			marker = "✓"
		}
		line := fmt.Sprintf("%d. %s %s", i+1, lang.Label(), marker)
		if i == m.langCursor {
			lines = append(lines, m.styles.menuActive.Render("> "+line))
		} else {
			lines = append(lines, m.styles.menuItem.Render("  "+line))
		}
	}
	lines = append(lines, "", m.styles.hint.Render(m.prefs.T(i18n.CloseHint)))
	return m.styles.modal.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) toastView() string {
	if m.toast == nil {
		return ""
	}
	style := m.styles.toast
	if m.toast.Variant == chatbot.ToastDestructive {
		style = m.styles.toastDanger
	}
	text := m.toast.Title
	if m.toast.Description != "" {
		text += ": " + m.toast.Description
	}
	return style.Render(text)
}

func (m Model) inputView() string {
	line := m.textinput.View()
	if m.sending || m.clearing {
		line = m.spinner.View() + " " + line
	}
	return m.styles.input.Width(max(m.width-2, 10)).Render(line)
}

// renderMessages lays the conversation out: guest messages on the right, replies on the left.
func (m Model) renderMessages(msgs []session.Message) string {
	width := m.viewport.Width
	if len(msgs) == 0 {
		return m.styles.welcome.Width(width).Render(m.prefs.T(i18n.Welcome))
	}

	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsUser() {
			bubble := m.styles.userBubble.MaxWidth(m.bubbleWidth()).Render(wrap(msg.Content, m.bubbleWidth()-2))
			blocks = append(blocks, lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble))
			continue
		}

		block := m.renderAssistant(msg.Content)
		if rt, ok := msg.ResponseTime(); ok && rt != 0 {
			block = lipgloss.JoinVertical(lipgloss.Left, block,
				m.styles.meta.Render(fmt.Sprintf("%s: %.0fms", m.prefs.T(i18n.ResponseTime), rt)))
		}
		blocks = append(blocks, lipgloss.PlaceHorizontal(width, lipgloss.Left, block))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderAssistant(content string) string {
	if m.renderer != nil {
		out, err := m.renderer.Render(content)
		if err == nil {
			return strings.Trim(out, "\n")
		}
		m.logger.Warn("failed to render markdown", "error", err)
	}
	return m.styles.assistant.Render(wrap(content, m.bubbleWidth()-2))
}

// wrap soft-wraps text at width columns. Short text is returned unpadded.
func wrap(text string, width int) string {
	if lipgloss.Width(text) <= width {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
