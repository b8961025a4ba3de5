package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"
	"github.com/mykisan/kisan/internal/content"
)

type tipsState int

const (
	tipsStateBrowse tipsState = iota
	tipsStateSearching
	tipsStateReading
)

type tipsModel struct {
	common     *commonModel
	state      tipsState
	all        []content.Tip
	categories []content.Category
	category   int
	cursor     int
	search     textinput.Model
	err        error
}

func newTipsModel(common *commonModel) tipsModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search tips"
	ti.CharLimit = 60

	m := tipsModel{common: common, search: ti}
	m.all, m.err = content.Tips()
	if m.err == nil {
		m.categories, m.err = content.Categories()
	}
	return m
}

// visible returns the tips matching the category and search query.
func (m tipsModel) visible() []content.Tip {
	tips := m.all
	if len(m.categories) > 0 {
		tips = content.FilterTips(tips, m.categories[m.category].ID)
	}
	return content.SearchTips(tips, m.search.Value())
}

func (m tipsModel) selected() (content.Tip, bool) {
	tips := m.visible()
	if m.cursor >= len(tips) {
		return content.Tip{}, false
	}
	return tips[m.cursor], true
}

func (m tipsModel) capturingKeys() bool {
	return m.state == tipsStateSearching
}

func (m tipsModel) update(msg tea.Msg) (tipsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == tipsStateSearching {
		switch key.String() {
		case "enter":
			m.state = tipsStateBrowse
			m.search.Blur()
			return m, nil
		case "esc":
			m.state = tipsStateBrowse
			m.search.Blur()
			m.search.Reset()
			m.cursor = 0
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.cursor = 0
		return m, cmd
	}

	switch key.String() {
	case "/":
		m.state = tipsStateSearching
		cmd := m.search.Focus()
		return m, cmd
	case "left", "h":
		if n := len(m.categories); n > 0 {
			m.category = (m.category - 1 + n) % n
			m.cursor = 0
		}
	case "right", "l":
		if n := len(m.categories); n > 0 {
			m.category = (m.category + 1) % n
			m.cursor = 0
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	}
	return m, nil
}

func (m tipsModel) view() string {
	if m.err != nil {
		return errorView(m.err, false)
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render("Farming Tips"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Expert advice for better farming"))
	b.WriteString("\n\n")

	cats := make([]string, len(m.categories))
	for i, c := range m.categories {
		if i == m.category {
			cats[i] = activeButtonStyle.Render(c.Name)
		} else {
			cats[i] = chipStyle.Render(c.Name)
		}
	}
	b.WriteString(strings.Join(cats, " "))
	b.WriteString("\n\n")

	if m.state == tipsStateSearching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	tips := m.visible()
	if len(tips) == 0 {
		b.WriteString(subtleStyle.Render("No tips match."))
		b.WriteString("\n")
	}
	width := max(m.common.width-8, 20)
	for i, t := range tips {
		title := fmt.Sprintf("%s %s", t.Thumbnail, t.Title)
		meta := subtleStyle.Render(fmt.Sprintf("%s · %s", t.ReadTime, t.Category))
		desc := dimStyle.Render(truncate.StringWithTail(t.Description, uint(width), ellipsis)) //nolint:gosec
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("› "+title) + "  " + meta + "\n  " + desc + "\n")
		} else {
			b.WriteString("  " + title + "  " + meta + "\n  " + desc + "\n")
		}
	}
	b.WriteString(helpStyle.Render(m.helpView()))
	return b.String()
}

func (m tipsModel) helpView() string {
	if m.state == tipsStateSearching {
		return "enter done • esc clear"
	}
	return "←/→ category • / search • enter read • 1-5 tabs"
}
