package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/mykisan/kisan/internal/content"
	"github.com/mykisan/kisan/internal/voice"
)

const toolColumns = 2

type homeFocus int

const (
	focusTools homeFocus = iota
	focusInput
)

type homeModel struct {
	common *commonModel
	tools  []content.Tool
	cursor int
	focus  homeFocus
	input  textinput.Model

	// popup is the open tool sheet, if any.
	popup *popupModel

	spinner spinner.Model
	// loading describes a remote call in flight; empty when idle.
	loading string
}

func newHomeModel(common *commonModel) homeModel {
	ti := textinput.New()
	ti.Placeholder = "Type your farming question..."
	ti.Prompt = "› "
	ti.CharLimit = 300

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(green)

	return homeModel{
		common:  common,
		tools:   content.Tools(),
		input:   ti,
		spinner: sp,
	}
}

func (m homeModel) selectedTool() content.Tool {
	return m.tools[m.cursor]
}

// capturingKeys reports whether keystrokes belong to a text field or the
// open popup.
func (m homeModel) capturingKeys() bool {
	return m.popup != nil || m.focus == focusInput
}

func (m *homeModel) openPopup() {
	p := newPopupModel(m.common, m.selectedTool())
	m.popup = &p
}

func (m *homeModel) closePopup() {
	m.popup = nil
}

func (m *homeModel) focusInput() tea.Cmd {
	m.focus = focusInput
	return m.input.Focus()
}

func (m *homeModel) blurInput() {
	m.focus = focusTools
	m.input.Blur()
}

func (m homeModel) update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.loading == "" && !m.common.voice.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.popup != nil {
			p, cmd := m.popup.update(msg)
			m.popup = &p
			return m, cmd
		}
		if m.focus == focusInput {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "left", "h":
			if m.cursor%toolColumns > 0 {
				m.cursor--
			}
		case "right", "l":
			if m.cursor%toolColumns < toolColumns-1 && m.cursor+1 < len(m.tools) {
				m.cursor++
			}
		case "up", "k":
			if m.cursor-toolColumns >= 0 {
				m.cursor -= toolColumns
			}
		case "down", "j":
			if m.cursor+toolColumns < len(m.tools) {
				m.cursor += toolColumns
			}
		}
	}
	return m, nil
}

func (m homeModel) view() string {
	var b strings.Builder

	name := m.common.user
	if name == "" {
		name = "Farmer"
	}
	b.WriteString(headingStyle.Render(fmt.Sprintf("👋 Welcome, %s", name)))
	b.WriteString("\n")
	b.WriteString(sunStyle.Render("☀ 28°C Sunny"))
	b.WriteString(dimStyle.Render("   📍 " + m.common.cfg.Location))
	b.WriteString("\n\n")

	b.WriteString(m.voiceView())
	b.WriteString("\n\n")

	input := m.input.View()
	if m.focus == focusInput {
		input += "  " + activeButtonStyle.Render("Send")
	}
	b.WriteString(input)
	b.WriteString("\n\n")

	if m.loading != "" {
		b.WriteString(m.spinner.View() + " " + m.loading + "\n\n")
	}

	b.WriteString(sectionStyle.Render("Quick Tools"))
	b.WriteString("\n")
	b.WriteString(m.toolsView())

	if m.popup != nil {
		b.WriteString("\n")
		b.WriteString(m.popup.view())
	}
	return b.String()
}

func (m homeModel) voiceView() string {
	st := m.common.voice
	var button, caption string
	switch st.Phase() {
	case voice.PhaseListening:
		button = voiceListeningStyle.Render("🎤 Listening…")
		caption = "Press space to stop"
	case voice.PhaseProcessing:
		button = voiceProcessingStyle.Render(m.spinner.View() + " Processing…")
		caption = "Working out what you said"
	default:
		button = voiceIdleStyle.Render("🎤 Tap to speak")
		caption = "Press space and ask in your language"
	}
	return button + "\n" + subtleStyle.Render(caption)
}

func (m homeModel) toolsView() string {
	width := max((m.common.width-4)/toolColumns-2, 16)
	var rows []string
	for i := 0; i < len(m.tools); i += toolColumns {
		var cells []string
		for j := i; j < i+toolColumns && j < len(m.tools); j++ {
			t := m.tools[j]
			body := headingStyle.Render(truncate.StringWithTail(t.Name, uint(width-2), ellipsis)) + "\n" + //nolint:gosec
				dimStyle.Render(truncate.StringWithTail(t.Description, uint(width-2), ellipsis)) //nolint:gosec
			style := cardStyle
			if j == m.cursor && m.focus == focusTools && m.popup == nil {
				style = selectedCardStyle
			}
			cells = append(cells, style.Width(width).Render(body))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m homeModel) helpView() string {
	switch {
	case m.popup != nil:
		return ""
	case m.focus == focusInput:
		return "enter send • esc back"
	default:
		return "space voice • / type • enter open tool • 1-5 tabs • q quit"
	}
}
