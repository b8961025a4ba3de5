package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"
)

const maxToasts = 3

type toast struct {
	id          int
	title       string
	body        string
	destructive bool
}

type toastExpiredMsg struct{ id int }

// toasts is a short stack of notifications, newest last.
type toasts struct {
	nextID int
	items  []toast
}

// push adds a notification and returns the command that expires it.
func (t *toasts) push(title, body string, destructive bool) tea.Cmd {
	t.nextID++
	id := t.nextID
	t.items = append(t.items, toast{id: id, title: title, body: body, destructive: destructive})
	if len(t.items) > maxToasts {
		t.items = t.items[len(t.items)-maxToasts:]
	}
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return toastExpiredMsg{id}
	})
}

func (t *toasts) expire(id int) {
	for i, it := range t.items {
		if it.id == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

func (t toasts) view(width int) string {
	if len(t.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.items))
	for _, it := range t.items {
		s := it.title
		if it.body != "" {
			s += ": " + it.body
		}
		if width > 4 {
			s = truncate.StringWithTail(s, uint(width-4), ellipsis) //nolint:gosec
		}
		style := toastStyle
		if it.destructive {
			style = destructiveToastStyle
		}
		lines = append(lines, style.Render(s))
	}
	return strings.Join(lines, "\n")
}
