// Package tui is the terminal shell: a bubbletea model over the capture and
// translation controller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"parrot/internal/domain"
	"parrot/internal/lang"
)

// Controller is the part of usecase.Controller the terminal shell drives.
type Controller interface {
	IsSupported() bool
	Toggle(ctx context.Context) domain.CaptureStatus
	Clear()
	Languages() (string, string)
	CycleSource(step int) string
	CycleTarget(step int) string
	TranslateTranscript(ctx context.Context) (domain.TranslationResult, error)
}

// History lists recent translations, newest first.
type History interface {
	Entries() []domain.HistoryEntry
}

// Info is shown in the footer.
type Info struct {
	Recognition string
	Speech      string
	Gateway     string
}

// Messages
type CaptureMsg struct{ Status domain.CaptureStatus }
type TranscriptMsg struct{ Text string }
type TranslationMsg struct{ Update domain.TranslationUpdate }
type supportMsg struct{ supported bool }
type translateErrMsg struct{ err error }

const historyRows = 3

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	listeningStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	idleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	langStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpKeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	panelStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
)

type Model struct {
	ctx        context.Context
	controller Controller
	history    History
	info       Info

	supported   bool
	probed      bool
	status      domain.CaptureStatus
	transcript  string
	source      string
	target      string
	translation string
	detected    string
	notice      string
	noticeErr   bool
	width       int
}

func NewModel(ctx context.Context, controller Controller, history History, info Info) Model {
	source, target := controller.Languages()
	return Model{
		ctx:        ctx,
		controller: controller,
		history:    history,
		info:       info,
		status:     domain.CaptureStatus{State: domain.CaptureStateIdle},
		source:     source,
		target:     target,
	}
}

func (m Model) Init() tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		return supportMsg{supported: controller.IsSupported()}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case supportMsg:
		m.supported = msg.supported
		m.probed = true

	case CaptureMsg:
		m.status = msg.Status

	case TranscriptMsg:
		m.transcript = msg.Text

	case TranslationMsg:
		m.applyTranslation(msg.Update)

	case translateErrMsg:
		if errors.Is(msg.err, domain.ErrNoTranscript) || errors.Is(msg.err, domain.ErrEmptyText) {
			m.notice = "Nothing to translate yet"
			m.noticeErr = false
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "space":
		controller, ctx := m.controller, m.ctx
		return m, func() tea.Msg {
			return CaptureMsg{Status: controller.Toggle(ctx)}
		}
	case "t":
		controller, ctx := m.controller, m.ctx
		return m, func() tea.Msg {
			if _, err := controller.TranslateTranscript(ctx); err != nil {
				return translateErrMsg{err: err}
			}
			return nil
		}
	case "c":
		controller := m.controller
		return m, func() tea.Msg {
			controller.Clear()
			return nil
		}
	case "tab":
		m.target = m.controller.CycleTarget(1)
	case "shift+tab":
		m.target = m.controller.CycleTarget(-1)
	case "s":
		m.source = m.controller.CycleSource(1)
	}
	return m, nil
}

func (m *Model) applyTranslation(update domain.TranslationUpdate) {
	switch update.Phase {
	case domain.TranslationPhaseTranslating:
		m.notice = "Translating…"
		m.noticeErr = false
	case domain.TranslationPhaseDone:
		m.notice = "Done"
		m.noticeErr = false
		if update.Result != nil {
			m.translation = update.Result.TranslatedText
			m.detected = update.Result.DetectedSourceLang
		}
	case domain.TranslationPhaseFailed:
		m.notice = "Error: " + update.Error
		m.noticeErr = true
	}
}

func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 72
	}
	panelWidth := width - 4
	if panelWidth < 20 {
		panelWidth = 20
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("parrot") + "  " + m.statusLine() + "\n")
	b.WriteString(langStyle.Render(fmt.Sprintf("%s → %s", lang.Name(m.source), lang.Name(m.target))) + "\n\n")

	if m.probed && !m.supported {
		b.WriteString(errorStyle.Render("Speech recognition is unavailable. Configure a Deepgram API key and ffmpeg to listen.") + "\n\n")
	}

	transcript := m.transcript
	if transcript == "" {
		transcript = dimStyle.Render("Press space and start speaking.")
	}
	b.WriteString(panel("Transcript", transcript, panelWidth) + "\n")

	translation := m.translation
	if translation == "" {
		translation = dimStyle.Render("Translation output will appear here.")
	} else {
		translation = resultStyle.Render(translation)
		if m.detected != "" {
			translation += dimStyle.Render(fmt.Sprintf("  (from %s)", lang.Name(m.detected)))
		}
	}
	b.WriteString(panel("Translation", translation, panelWidth) + "\n")

	if m.notice != "" {
		style := idleStyle
		if m.noticeErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.notice) + "\n")
	}

	if recent := m.recentHistory(); recent != "" {
		b.WriteString("\n" + panelTitleStyle.Render("Recent") + "\n" + recent)
	}

	b.WriteString("\n" + m.helpLine() + "\n")
	if m.info.Recognition != "" {
		b.WriteString(helpStyle.Render(fmt.Sprintf("%s recognition · %s speech · %s", m.info.Recognition, m.info.Speech, m.info.Gateway)) + "\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch m.status.State {
	case domain.CaptureStateListening:
		return listeningStyle.Render("● LISTENING " + m.status.Language)
	case domain.CaptureStateRequesting:
		return idleStyle.Render("◌ requesting microphone")
	case domain.CaptureStateStopping:
		return idleStyle.Render("◌ stopping")
	case domain.CaptureStateError, domain.CaptureStateUnsupported:
		line := "✕ " + string(m.status.State)
		if m.status.Message != "" {
			line += ": " + m.status.Message
		}
		return errorStyle.Render(line)
	default:
		return idleStyle.Render("○ STANDBY")
	}
}

func (m Model) recentHistory() string {
	if m.history == nil {
		return ""
	}
	entries := m.history.Entries()
	if len(entries) > historyRows {
		entries = entries[:historyRows]
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%s → %s: ", e.Original, e.TargetLang)))
		b.WriteString(e.Translated + "\n")
	}
	return b.String()
}

func (m Model) helpLine() string {
	keys := []struct{ key, desc string }{
		{"space", "listen"},
		{"t", "translate"},
		{"c", "clear"},
		{"tab", "target"},
		{"s", "source"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+helpStyle.Render(" "+k.desc))
	}
	return strings.Join(parts, helpStyle.Render("  "))
}

func panel(title, body string, width int) string {
	return panelTitleStyle.Render(title) + "\n" + panelStyle.Width(width).Render(body)
}
