package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/mykisan/kisan/internal/content"
)

const splashInterval = 4 * time.Second

// splashTickMsg advances the carousel. Ticks from an older generation are
// ignored so manual navigation restarts the interval.
type splashTickMsg struct{ gen int }

type splashModel struct {
	common   *commonModel
	features []content.Feature
	dots     paginator.Model
	gen      int
}

func newSplashModel(common *commonModel) splashModel {
	features := content.SplashFeatures()
	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = selectedStyle.Render("●")
	p.InactiveDot = subtleStyle.Render("○")
	p.SetTotalPages(len(features))
	return splashModel{
		common:   common,
		features: features,
		dots:     p,
	}
}

func (m splashModel) current() int {
	return m.dots.Page
}

func (m splashModel) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(splashInterval, func(time.Time) tea.Msg {
		return splashTickMsg{gen}
	})
}

// restart resets the carousel and schedules the first advance.
func (m *splashModel) restart() tea.Cmd {
	m.gen++
	m.dots.Page = 0
	return m.tick()
}

func (m *splashModel) move(delta int) tea.Cmd {
	n := len(m.features)
	m.dots.Page = (m.dots.Page + delta + n) % n
	m.gen++
	return m.tick()
}

func (m splashModel) update(msg tea.Msg) (splashModel, tea.Cmd) {
	switch msg := msg.(type) {
	case splashTickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		n := len(m.features)
		m.dots.Page = (m.dots.Page + 1) % n
		return m, m.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			cmd := m.move(-1)
			return m, cmd
		case "right", "l":
			cmd := m.move(1)
			return m, cmd
		}
	}
	return m, nil
}

func (m splashModel) view() string {
	f := m.features[m.current()]
	width := min(max(m.common.width-8, 20), 60)

	var b strings.Builder
	b.WriteString(logoStyle.Render("MyKisanAI"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Your AI farming companion"))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render(f.Title))
	b.WriteString("\n\n")
	b.WriteString(wordwrap.String(f.Description, width))
	b.WriteString("\n\n")
	b.WriteString(m.dots.View())
	b.WriteString("\n\n")
	b.WriteString(activeButtonStyle.Render("Get Started"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←/→ browse • enter get started • q quit"))

	return lipgloss.Place(m.common.width, m.common.height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Align(lipgloss.Center).Render(b.String()))
}
