// Package tui is the full-screen terminal view of the concierge chat.
// The package is split across files:
//   - model.go: types, Init, Update loop (this file)
//   - commands.go: asynchronous commands and their result messages
//   - view.go: rendering
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"ConciergeChat/internal/cache"
	"ConciergeChat/internal/chatbot"
	"ConciergeChat/internal/i18n"
	"ConciergeChat/internal/qr"
)

// Options configures the view
type Options struct {
	Context      context.Context // Used by every command; defaults to context.Background
	QRTarget     string          // Page URL shown in the QR modal
	GlamourStyle string          // Markdown style for assistant replies; defaults to "auto"
	Logger       *slog.Logger
}

type overlay int

const (
	overlayNone overlay = iota
	overlayQR
	overlayLanguage
)

// Model is the bubbletea model of the chat screen
type Model struct {
	// UI Components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer
	styles    styles

	// Backend
	bot    *chatbot.ChatBot
	prefs  *chatbot.Preferences
	ctx    context.Context
	logger *slog.Logger

	// State
	width        int
	height       int
	ready        bool
	mounted      bool
	sending      bool
	clearing     bool
	fingerprint  string
	glamourStyle string

	// Modal/visibility state
	overlay    overlay
	langCursor int
	qrTarget   string
	qrCode     string

	toast    *chatbot.Toast
	toastSeq int
}

// New creates the chat screen for bot.
func New(bot *chatbot.ChatBot, opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	style := opts.GlamourStyle
	if style == "" {
		style = "auto"
	}

	prefs := bot.Preferences()

	ti := textinput.New()
	ti.Placeholder = prefs.T(i18n.TypeMessage)
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		textinput:    ti,
		spinner:      sp,
		styles:       defaultStyles(),
		bot:          bot,
		prefs:        prefs,
		ctx:          ctx,
		logger:       logger,
		glamourStyle: style,
		qrTarget:     opts.QRTarget,
	}
}

// Init initializes the chat screen and mounts the conversation
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.mountCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch m.overlay {
		case overlayQR:
			switch msg.String() {
			case "esc", "ctrl+q", "enter":
				m.overlay = overlayNone
			}
			return m, nil
		case overlayLanguage:
			return m.updateLanguageMenu(msg)
		}

		switch msg.String() {
		case "enter":
			if m.sending {
				return m, nil
			}
			return m.handleSubmit()
		case "ctrl+l":
			return m.handleClear()
		case "ctrl+t":
			m.openLanguageMenu()
			return m, nil
		case "ctrl+q":
			return m.openQR()
		case "esc":
			return m, nil
		case "pgup":
			m.viewport.ViewUp()
			return m, nil
		case "pgdown":
			m.viewport.ViewDown()
			return m, nil
		}

		// Input is read-only while a message is in flight.
		if !m.sending {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.MouseMsg:
		m.viewport, vpCmd = m.viewport.Update(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case spinner.TickMsg:
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, spCmd

	case mountedMsg:
		m.mounted = true
		m.syncMessages(false)
		if msg.err != nil {
			cmd := m.showError(msg.err)
			return m, cmd
		}

	case sentMsg:
		m.sending = false
		if msg.err != nil {
			cmd := m.showError(msg.err)
			return m, cmd
		}
		if msg.sent {
			m.textinput.Reset()
			return m, m.refreshCmd()
		}

	case clearedMsg:
		m.clearing = false
		if msg.err != nil {
			cmd := m.showError(msg.err)
			return m, cmd
		}
		cmd := m.showToast(msg.toast)
		return m, tea.Batch(cmd, m.refreshCmd())

	case refreshedMsg:
		m.syncMessages(false)
		if msg.err != nil {
			cmd := m.showError(msg.err)
			return m, cmd
		}

	case dismissToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	input := m.textinput.Value()
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	m.sending = true
	return m, m.sendCmd(input)
}

func (m Model) handleClear() (tea.Model, tea.Cmd) {
	if m.clearing {
		return m, nil
	}
	m.clearing = true
	return m, m.clearCmd()
}

func (m Model) openQR() (tea.Model, tea.Cmd) {
	if m.qrCode == "" {
		code, err := qr.Render(m.qrTarget)
		if err != nil {
			m.logger.Error("failed to render qr code", "url", m.qrTarget, "error", err)
			cmd := m.showError(err)
			return m, cmd
		}
		m.qrCode = code
	}
	m.overlay = overlayQR
	return m, nil
}

func (m *Model) openLanguageMenu() {
	m.overlay = overlayLanguage
	m.langCursor = 0
	current := m.prefs.Language()
	for i, lang := range i18n.Languages() {
		if lang == current {
			m.langCursor = i
		}
	}
}

func (m Model) updateLanguageMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	langs := i18n.Languages()
	key := msg.String()
	switch key {
	case "esc", "ctrl+t":
		m.overlay = overlayNone
	case "up", "k":
		if m.langCursor > 0 {
			m.langCursor--
		}
	case "down", "j":
		if m.langCursor < len(langs)-1 {
			m.langCursor++
		}
	case "enter":
		return m.selectLanguage(langs[m.langCursor])
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(langs) {
			return m.selectLanguage(langs[key[0]-'1'])
		}
	}
	return m, nil
}

func (m Model) selectLanguage(lang i18n.Language) (tea.Model, tea.Cmd) {
	m.overlay = overlayNone
	if err := m.prefs.SetLanguage(lang); err != nil {
		cmd := m.showError(err)
		return m, cmd
	}
	m.textinput.Placeholder = m.prefs.T(i18n.TypeMessage)
	m.syncMessages(true)
	m.logger.Info("language changed", "language", string(lang))
	return m, nil
}

// resize lays the viewport out below the header and above the input area.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 2
	toastHeight := 1
	inputHeight := 3 // bordered single line
	hintHeight := 1

	vpHeight := height - headerHeight - toastHeight - inputHeight - hintHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	vpWidth := width - 2
	if vpWidth < 20 {
		vpWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.textinput.Width = width - 8

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.glamourStyle),
		glamour.WithWordWrap(m.bubbleWidth()-4),
	)
	if err != nil {
		m.logger.Warn("markdown renderer unavailable, showing plain text", "error", err)
		renderer = nil
	}
	m.renderer = renderer

	m.syncMessages(true)
}

// syncMessages re-renders the conversation when the cached list changed, or always when force is set.
func (m *Model) syncMessages(force bool) {
	if !m.ready {
		return
	}
	entry := m.bot.Messages()
	fp := cache.Fingerprint(entry.Messages)
	if !force && fp == m.fingerprint && m.fingerprint != "" {
		return
	}
	m.fingerprint = fp
	m.viewport.SetContent(m.renderMessages(entry.Messages))
	m.viewport.GotoBottom()
}

// Run starts the chat screen and blocks until the visitor quits or ctx is cancelled.
func Run(ctx context.Context, bot *chatbot.ChatBot, opts Options) error {
	opts.Context = ctx
	p := tea.NewProgram(New(bot, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	}
	return nil
}
