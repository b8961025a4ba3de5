package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
	"github.com/mykisan/kisan/utils"
)

const statusBarHeight = 1

type contentRenderedMsg string

// document is markdown shown in the pager.
type document struct {
	Title string
	Body  string
}

type pagerState int

const (
	pagerStateBrowse pagerState = iota
	pagerStateStatusMessage
)

type pagerModel struct {
	common   *commonModel
	viewport viewport.Model
	state    pagerState

	statusMessage      string
	statusMessageTimer *time.Timer

	// Current document, sans glamour rendering. Kept so it can be
	// re-rendered on resize.
	currentDocument document
}

func newPagerModel(common *commonModel) pagerModel {
	vp := viewport.New(0, 0)
	return pagerModel{
		common:   common,
		state:    pagerStateBrowse,
		viewport: vp,
	}
}

func (m *pagerModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = max(h-statusBarHeight, 0)
}

// load replaces the document and returns the command rendering it.
func (m *pagerModel) load(doc document) tea.Cmd {
	m.unload()
	m.currentDocument = doc
	return renderWithGlamour(*m, doc.Body)
}

func (m *pagerModel) unload() {
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.state = pagerStateBrowse
	m.currentDocument = document{}
	m.viewport.SetContent("")
	m.viewport.YOffset = 0
}

func (m *pagerModel) showStatusMessage(message string) tea.Cmd {
	m.state = pagerStateStatusMessage
	m.statusMessage = message
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func (m pagerModel) update(msg tea.Msg) (pagerModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "home", "g":
			m.viewport.GotoTop()
		case "end", "G":
			m.viewport.GotoBottom()
		case "d":
			m.viewport.HalfViewDown()
		case "u":
			m.viewport.HalfViewUp()
		case "c":
			// Copy using OSC 52
			termenv.Copy(m.currentDocument.Body)
			// Copy using native system clipboard
			_ = clipboard.WriteAll(m.currentDocument.Body)
			cmds = append(cmds, m.showStatusMessage("Copied contents"))
		case "s":
			if m.common.svc.Voice != nil && m.currentDocument.Body != "" {
				m.common.svc.Voice.SpeakText(m.currentDocument.Body)
				cmds = append(cmds, m.showStatusMessage("Reading aloud"))
			}
		}

	case contentRenderedMsg:
		m.viewport.SetContent(string(msg))

	case tea.WindowSizeMsg:
		if m.currentDocument.Body != "" {
			cmds = append(cmds, renderWithGlamour(m, m.currentDocument.Body))
		}

	case statusMessageTimeoutMsg:
		m.state = pagerStateBrowse
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m pagerModel) view() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")
	m.statusBarView(&b)
	return b.String()
}

func (m pagerModel) statusBarView(b *strings.Builder) {
	showStatusMessage := m.state == pagerStateStatusMessage

	logo := logoStyle.Render("MyKisanAI")

	percent := math.Max(0, math.Min(1, m.viewport.ScrollPercent()))
	scrollPercent := fmt.Sprintf(" %3.f%% ", percent*100)
	help := " esc back • c copy • s speak "

	note := m.currentDocument.Title
	if showStatusMessage {
		note = m.statusMessage
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			lipgloss.Width(logo)-
			runewidth.StringWidth(scrollPercent)-
			runewidth.StringWidth(help),
	)), ellipsis)

	style := statusBarNoteStyle
	if showStatusMessage {
		style = statusBarMessageStyle
	}
	padding := max(0,
		m.common.width-
			lipgloss.Width(logo)-
			runewidth.StringWidth(note)-
			runewidth.StringWidth(scrollPercent)-
			runewidth.StringWidth(help),
	)

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		style(note),
		style(strings.Repeat(" ", padding)),
		style(scrollPercent),
		statusBarNoteStyle(help),
	)
}

// COMMANDS

type statusMessageTimeoutMsg struct{}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// This is where the magic happens.
func renderWithGlamour(m pagerModel, md string) tea.Cmd {
	return func() tea.Msg {
		s, err := glamourRender(m, md)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return errMsg{err}
		}
		return contentRenderedMsg(s)
	}
}

// This is where the magic happens.
func glamourRender(m pagerModel, markdown string) (string, error) {
	if !m.common.cfg.GlamourEnabled {
		return markdown, nil
	}

	width := max(0, m.viewport.Width)
	if m.common.cfg.GlamourMaxWidth > 0 {
		width = min(width, int(m.common.cfg.GlamourMaxWidth)) //nolint:gosec
	}
	if width == 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		utils.GlamourStyle(m.common.glamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}

	// trim lines
	lines := strings.Split(out, "\n")
	var content strings.Builder
	for i, s := range lines {
		content.WriteString(strings.TrimRight(s, " "))
		if i+1 < len(lines) {
			content.WriteByte('\n')
		}
	}
	return content.String(), nil
}
