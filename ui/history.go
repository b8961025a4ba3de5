package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/truncate"
	"github.com/mykisan/kisan/internal/history"
)

type (
	historyLoadedMsg struct {
		items []history.Item
		err   error
	}
	historyAddedMsg struct {
		item history.Item
		err  error
	}
)

type historyModel struct {
	common *commonModel
	items  []history.Item
	loaded bool
	offset int
	err    error
}

func newHistoryModel(common *commonModel) historyModel {
	return historyModel{common: common}
}

func (m historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.items = msg.items
		m.err = msg.err
		m.loaded = true
		m.offset = 0

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			if m.offset < len(m.items)-1 {
				m.offset++
			}
		}
	}
	return m, nil
}

func (m historyModel) view() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("History"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Review your past interactions with MyKisanAI"))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorView(m.err, false))
		return b.String()
	case !m.loaded:
		b.WriteString("\n" + subtleStyle.Render("Loading…") + "\n")
		return b.String()
	case len(m.items) == 0:
		b.WriteString("\n" + headingStyle.Render("No history yet") + "\n")
		b.WriteString(subtleStyle.Render("Start using MyKisanAI to see your conversation history here") + "\n\n")
		b.WriteString(dimStyle.Render("For example:") + "\n")
		m.writeGroups(&b, history.SampleItems(m.common.now()))
		return b.String()
	}

	m.writeGroups(&b, m.items[m.offset:])
	b.WriteString(helpStyle.Render("↑/↓ scroll • 1-5 tabs"))
	return b.String()
}

func (m historyModel) writeGroups(b *strings.Builder, items []history.Item) {
	now := m.common.now()
	width := max(m.common.width-8, 20)
	for _, g := range history.GroupByDay(items, now) {
		b.WriteString(sectionStyle.Render(g.Label))
		b.WriteString("\n")
		for _, it := range g.Items {
			fmt.Fprintf(b, "%s %s  %s\n",
				kindIcon(it.Kind),
				headingStyle.Render(it.Tool),
				subtleStyle.Render(it.Ago(now)),
			)
			fmt.Fprintf(b, "  %s\n", truncate.StringWithTail("Q: "+it.Query, uint(width), ellipsis))               //nolint:gosec
			fmt.Fprintf(b, "  %s\n", dimStyle.Render(truncate.StringWithTail(it.Response, uint(width), ellipsis))) //nolint:gosec
		}
	}
}

func kindIcon(k history.Kind) string {
	switch k {
	case history.KindVoice:
		return "🎤"
	case history.KindImage:
		return "📷"
	default:
		return "💬"
	}
}

// COMMANDS

func loadHistory(h History, limit int) tea.Cmd {
	return func() tea.Msg {
		if h == nil {
			return historyLoadedMsg{}
		}
		items, err := h.List(context.Background(), limit)
		if err != nil {
			log.Error("unable to load history", "error", err)
		}
		return historyLoadedMsg{items: items, err: err}
	}
}

func addHistory(h History, item history.Item) tea.Cmd {
	return func() tea.Msg {
		if h == nil {
			return nil
		}
		stored, err := h.Add(context.Background(), item)
		if err != nil {
			log.Error("unable to record history", "error", err)
		}
		return historyAddedMsg{item: stored, err: err}
	}
}
