package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
	"github.com/mykisan/kisan/internal/content"
)

// popupModel is the bottom sheet shown for a quick tool.
type popupModel struct {
	common *commonModel
	tool   content.Tool
	cursor int
	input  textinput.Model
}

func newPopupModel(common *commonModel, tool content.Tool) popupModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 200
	if a, ok := tool.TextAction(); ok {
		ti.Placeholder = a.Placeholder
	}
	m := popupModel{common: common, tool: tool, input: ti}
	m.syncFocus()
	return m
}

func (m popupModel) action() content.Action {
	return m.tool.Actions[m.cursor]
}

func (m *popupModel) syncFocus() {
	if m.action().Kind == content.ActionText {
		m.input.Focus()
		return
	}
	m.input.Blur()
}

// query is the trimmed text typed into the popup.
func (m popupModel) query() string {
	return strings.TrimSpace(m.input.Value())
}

func (m popupModel) update(msg tea.Msg) (popupModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			m.cursor = (m.cursor + 1) % len(m.tool.Actions)
			m.syncFocus()
			return m, nil
		case "shift+tab", "up":
			m.cursor = (m.cursor - 1 + len(m.tool.Actions)) % len(m.tool.Actions)
			m.syncFocus()
			return m, nil
		}
	}
	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m popupModel) view() string {
	width := max(m.common.width-6, 20)

	var b strings.Builder
	b.WriteString(headingStyle.Render(m.tool.Name))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.tool.Description))
	b.WriteString("\n\n")

	chips := make([]string, len(m.tool.Features))
	for i, f := range m.tool.Features {
		chips[i] = chipStyle.Render(f)
	}
	b.WriteString(strings.Join(chips, " "))
	b.WriteString("\n\n")

	for i, a := range m.tool.Actions {
		active := i == m.cursor
		switch a.Kind {
		case content.ActionText:
			m.input.Width = max(width-len(a.Label)-12, 10)
			send := buttonStyle.Render(a.Label)
			if active {
				send = activeButtonStyle.Render(a.Label)
			}
			b.WriteString(m.input.View() + "  " + send)
		default:
			label := actionIcon(a.Kind) + " " + a.Label
			if active {
				b.WriteString(activeButtonStyle.Render(label))
			} else {
				b.WriteString(buttonStyle.Render(label))
			}
		}
		b.WriteString("\n\n")
	}

	if m.tool.Hint != "" {
		b.WriteString(subtleStyle.Render(wordwrap.String(m.tool.Hint, width)))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tab next • enter select • esc close"))

	return popupStyle.Width(width).Render(b.String())
}

func actionIcon(k content.ActionKind) string {
	switch k {
	case content.ActionUpload:
		return "⇪"
	case content.ActionCamera:
		return "◉"
	case content.ActionVoice:
		return "🎤"
	default:
		return "›"
	}
}
