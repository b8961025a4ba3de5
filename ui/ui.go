// Package ui provides the terminal interface for the kisan farmer assistant.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	te "github.com/muesli/termenv"
	"github.com/mykisan/kisan/internal/api"
	"github.com/mykisan/kisan/internal/content"
	"github.com/mykisan/kisan/internal/history"
	"github.com/mykisan/kisan/internal/settings"
	"github.com/mykisan/kisan/internal/voice"
)

const (
	statusMessageTimeout = time.Second * 3 // how long toasts and status messages stay up
	ellipsis             = "…"
)

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, svc Services) *tea.Program {
	log.Debug(
		"Starting kisan",
		"glamour",
		cfg.GlamourEnabled,
		"skip_intro",
		cfg.SkipIntro,
	)

	if cfg.GlamourStyle == "" || cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	m := newModel(cfg, svc)
	m.common.darkBackground = lipgloss.HasDarkBackground()
	m.common.applyTheme()
	return tea.NewProgram(m, opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// resultMsg carries an answered tool query.
type resultMsg struct {
	tool    string
	query   string
	kind    history.Kind
	doc     document
	summary string
}

// state is the top-level application state.
type state int

const (
	stateSplash state = iota
	stateLogin
	stateMain
)

func (s state) String() string {
	return map[state]string{
		stateSplash: "showing splash",
		stateLogin:  "showing login",
		stateMain:   "showing main app",
	}[s]
}

// tab is a bottom navigation destination.
type tab int

const (
	tabHome tab = iota
	tabTools
	tabTips
	tabHistory
	tabSettings
)

var tabs = []tab{tabHome, tabTools, tabTips, tabHistory, tabSettings}

func (t tab) String() string {
	return [...]string{"Home", "Tools", "Tips", "History", "Settings"}[t]
}

// overlay is a full screen view shown over the current tab.
type overlay int

const (
	overlayNone overlay = iota
	overlayPicker
	overlayPager
)

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg      Config
	svc      Services
	width    int
	height   int
	user     string
	settings settings.Settings
	voice    voice.State
	now      func() time.Time

	darkBackground bool
}

func (c commonModel) glamourStyle() string {
	if c.settings.DarkMode {
		return styles.DarkStyle
	}
	return c.cfg.GlamourStyle
}

func (c commonModel) applyTheme() {
	lipgloss.SetHasDarkBackground(c.settings.DarkMode || c.darkBackground)
}

type model struct {
	common   *commonModel
	state    state
	tab      tab
	overlay  overlay
	fatalErr error

	// Sub-models
	splash   splashModel
	login    loginModel
	home     homeModel
	picker   pickerModel
	pager    pagerModel
	tips     tipsModel
	history  historyModel
	settings settingsModel

	toasts        toasts
	voiceFeedback voiceFeedback
}

func newModel(cfg Config, svc Services) model {
	if cfg.Location == "" {
		cfg.Location = api.DefaultLocation
	}

	common := commonModel{
		cfg:      cfg,
		svc:      svc,
		settings: settings.Defaults(),
		now:      time.Now,
	}
	if svc.Settings != nil {
		common.settings = svc.Settings.Load()
	}
	if svc.Voice != nil {
		common.voice = svc.Voice.State()
	}

	m := model{
		common:   &common,
		state:    stateSplash,
		splash:   newSplashModel(&common),
		login:    newLoginModel(&common),
		home:     newHomeModel(&common),
		picker:   newPickerModel(&common),
		pager:    newPagerModel(&common),
		tips:     newTipsModel(&common),
		history:  newHistoryModel(&common),
		settings: newSettingsModel(&common),
	}
	if cfg.SkipIntro {
		m.state = stateMain
		common.user = demoUser
	}
	return m
}

func (m model) Init() tea.Cmd {
	log.Debug("Init() called", "state", m.state)
	var cmds []tea.Cmd
	if m.state == stateSplash {
		cmds = append(cmds, m.splash.tick())
	}
	if v := m.common.svc.Voice; v != nil {
		cmds = append(cmds, waitForVoice(v.Updates()))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Ctrl+C always quits no matter where in the application you are.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+z" {
			return m, tea.Suspend
		}
		return m.handleKey(msg)

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.pager.setSize(msg.Width, msg.Height)
		var cmd tea.Cmd
		m.pager, cmd = m.pager.update(msg)
		cmds = append(cmds, cmd)

	case errMsg:
		m.home.loading = ""
		cmds = append(cmds, m.toasts.push("Error", msg.Error(), true))

	case toastExpiredMsg:
		m.toasts.expire(msg.id)

	case splashTickMsg:
		if m.state == stateSplash {
			var cmd tea.Cmd
			m.splash, cmd = m.splash.update(msg)
			cmds = append(cmds, cmd)
		}

	case voiceUpdateMsg:
		cmds = append(cmds, m.handleVoice(voice.State(msg))...)
		if v := m.common.svc.Voice; v != nil {
			cmds = append(cmds, waitForVoice(v.Updates()))
		}

	case voiceStartedMsg:
		if msg.err != nil {
			// The controller publishes the failure as a snapshot too.
			log.Debug("unable to start listening", "error", msg.err)
		}

	case voiceClosedMsg:
		log.Debug("voice controller closed")

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.home, cmd = m.home.update(msg)
		cmds = append(cmds, cmd)

	case resultMsg:
		m.home.loading = ""
		m.overlay = overlayPager
		cmds = append(cmds,
			m.pager.load(msg.doc),
			addHistory(m.common.svc.History, history.Item{
				Tool:     msg.tool,
				Query:    msg.query,
				Response: msg.summary,
				Kind:     msg.kind,
			}),
		)
		m.speak(msg.summary)

	case historyAddedMsg:
		if msg.err == nil && m.tab == tabHistory {
			cmds = append(cmds, loadHistory(m.common.svc.History, m.common.cfg.HistoryLimit))
		}

	case historyLoadedMsg:
		m.history, _ = m.history.update(msg)

	case settingsToggledMsg:
		if msg.err != nil {
			cmds = append(cmds, m.toasts.push("Settings", "Unable to save: "+msg.err.Error(), true))
			break
		}
		m.common.settings = msg.settings
		m.common.applyTheme()

	case SettingsChangedMsg:
		m.common.settings = settings.Settings(msg)
		m.common.applyTheme()

	case initImageSearchMsg, foundImageMsg, imageSearchFinished:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.update(msg)
		cmds = append(cmds, cmd)

	case contentRenderedMsg, statusMessageTimeoutMsg:
		var cmd tea.Cmd
		m.pager, cmd = m.pager.update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case stateSplash:
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "enter", " ":
			m.state = stateLogin
			return m, nil
		}
		m.splash, cmd = m.splash.update(msg)
		return m, cmd

	case stateLogin:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc":
			m.state = stateSplash
			cmd = m.splash.restart()
			return m, cmd
		case "enter":
			if m.login.selected() {
				cmd = m.signIn()
				return m, cmd
			}
			return m, nil
		}
		m.login, cmd = m.login.update(msg)
		return m, cmd
	}

	switch m.overlay {
	case overlayPager:
		switch msg.String() {
		case "esc", "q", "left", "h", "backspace":
			m.overlay = overlayNone
			m.pager.unload()
			return m, nil
		}
		m.pager, cmd = m.pager.update(msg)
		return m, cmd

	case overlayPicker:
		switch msg.String() {
		case "esc", "q":
			m.overlay = overlayNone
			return m, nil
		case "enter":
			res, ok := m.picker.selected()
			if !ok {
				return m, nil
			}
			m.overlay = overlayNone
			m.home.loading = "Analyzing " + filepath.Base(res.Path) + "…"
			return m, tea.Batch(m.home.spinner.Tick, diagnoseImage(m.common.svc.Tools, res.Path))
		}
		m.picker, cmd = m.picker.update(msg)
		return m, cmd
	}

	if !m.capturingKeys() {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "1", "2", "3", "4", "5":
			cmd = m.switchTab(tabs[msg.String()[0]-'1'])
			return m, cmd
		}
	}

	switch m.tab {
	case tabHome, tabTools:
		return m.handleHomeKey(msg)
	case tabTips:
		if msg.String() == "enter" && !m.tips.capturingKeys() {
			if t, ok := m.tips.selected(); ok {
				m.overlay = overlayPager
				cmd = m.pager.load(document{Title: t.Title, Body: t.Markdown()})
				return m, cmd
			}
			return m, nil
		}
		m.tips, cmd = m.tips.update(msg)
		return m, cmd
	case tabHistory:
		m.history, cmd = m.history.update(msg)
		return m, cmd
	case tabSettings:
		if msg.String() == "enter" || msg.String() == " " {
			cmd = m.activateSetting()
			return m, cmd
		}
		m.settings, cmd = m.settings.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	h := &m.home
	var cmd tea.Cmd

	switch {
	case h.popup != nil:
		switch msg.String() {
		case "esc":
			h.closePopup()
			return m, nil
		case "enter":
			p := h.popup
			cmd = m.runAction(p.tool, p.action(), p.query())
			return m, cmd
		}

	case h.focus == focusInput:
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(h.input.Value())
			if q == "" {
				return m, nil
			}
			h.input.Reset()
			cmd = m.submitQuery(q)
			return m, cmd
		case "esc":
			h.blurInput()
			return m, nil
		}

	default:
		switch msg.String() {
		case "enter":
			h.openPopup()
			return m, nil
		case " ":
			cmd = m.toggleListening()
			return m, cmd
		case "/", "i", "tab":
			cmd = h.focusInput()
			return m, cmd
		}
	}

	m.home, cmd = m.home.update(msg)
	return m, cmd
}

func (m model) capturingKeys() bool {
	switch m.tab {
	case tabHome, tabTools:
		return m.home.capturingKeys()
	case tabTips:
		return m.tips.capturingKeys()
	default:
		return false
	}
}

func (m *model) signIn() tea.Cmd {
	log.Info("signed in", "user", demoUser)
	m.common.user = demoUser
	m.state = stateMain
	return m.switchTab(tabHome)
}

func (m *model) signOut() tea.Cmd {
	log.Info("signed out", "user", m.common.user)
	m.common.user = ""
	m.state = stateSplash
	m.tab = tabHome
	m.overlay = overlayNone
	m.home.closePopup()
	m.home.blurInput()
	m.settings.cursor = 0
	return m.splash.restart()
}

func (m *model) switchTab(t tab) tea.Cmd {
	m.tab = t
	switch t {
	case tabHistory:
		return loadHistory(m.common.svc.History, m.common.cfg.HistoryLimit)
	case tabTools:
		m.home.blurInput()
	}
	return nil
}

// runAction performs a tool popup action. Every action closes the popup,
// except submitting an empty query, which does nothing.
func (m *model) runAction(tool content.Tool, action content.Action, query string) tea.Cmd {
	if action.Kind == content.ActionText && query == "" {
		return nil
	}
	m.home.closePopup()
	log.Debug("tool action", "tool", tool.ID, "action", action.Kind)

	switch action.Kind {
	case content.ActionUpload:
		m.overlay = overlayPicker
		return tea.Batch(
			m.toasts.push("Upload Feature", "Choose a crop photo to diagnose", false),
			m.picker.start(),
		)

	case content.ActionCamera:
		return m.toasts.push("Camera Feature", "Camera capture is not available in the terminal. Use Upload Photo instead.", false)

	case content.ActionVoice:
		if m.common.svc.Voice == nil {
			return m.toasts.push("Voice Error", "Speech recognition not supported", true)
		}
		return startListening(m.common.svc.Voice)

	case content.ActionText:
		toast := m.toasts.push("Processing Query", fmt.Sprintf("Processing: %q", query), false)
		switch tool.ID {
		case content.ToolMarketAdvisory:
			m.home.loading = "Fetching market prices…"
			return tea.Batch(toast, m.home.spinner.Tick, fetchMarket(m.common.svc.Tools, query, m.common.cfg.Location))
		case content.ToolSubsidyNavigator:
			m.home.loading = "Finding schemes…"
			return tea.Batch(toast, m.home.spinner.Tick, fetchSchemes(m.common.svc.Tools, query))
		default:
			m.speak("Processing your query: " + query)
			return toast
		}
	}
	return nil
}

// submitQuery handles the free text box on the home screen.
func (m *model) submitQuery(q string) tea.Cmd {
	m.speak("Processing your query: " + q)
	return m.toasts.push("Processing Query", fmt.Sprintf("Processing: %q", q), false)
}

func (m *model) activateSetting() tea.Cmd {
	row := m.settings.selected()
	switch {
	case row.signOut:
		return m.signOut()
	case row.item.Action == content.SettingsToggle:
		if m.common.svc.Settings == nil {
			return m.toasts.push("Settings", "Settings are not persisted", true)
		}
		return toggleSetting(m.common.svc.Settings, row.item.Key)
	default:
		return m.toasts.push(row.item.Label, "Coming soon", false)
	}
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	switch m.state {
	case stateSplash:
		return m.splash.view()
	case stateLogin:
		return m.login.view()
	}

	if m.overlay == overlayPager {
		return m.pager.view()
	}

	var body string
	switch {
	case m.overlay == overlayPicker:
		body = m.picker.view()
	case m.tab == tabTips:
		body = m.tips.view()
	case m.tab == tabHistory:
		body = m.history.view()
	case m.tab == tabSettings:
		body = m.settings.view()
	default:
		body = m.home.view()
		if help := m.home.helpView(); help != "" {
			body += "\n" + helpStyle.Render(help)
		}
	}

	if t := m.toasts.view(m.common.width); t != "" {
		body = t + "\n\n" + body
	}

	nav := m.navView()
	if m.common.height > 0 {
		h := max(m.common.height-lipgloss.Height(nav), 1)
		body = lipgloss.NewStyle().Height(h).MaxHeight(h).Render(body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, indent(body, 1), nav)
}

func (m model) navView() string {
	items := make([]string, len(tabs))
	for i, t := range tabs {
		label := fmt.Sprintf("%d %s", i+1, t)
		if t == m.tab {
			items[i] = activeNavItemStyle.Render(label)
		} else {
			items[i] = navItemStyle.Render(label)
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, items...)
	return navStyle.Width(max(m.common.width, lipgloss.Width(row))).Render(row)
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// COMMANDS

func fetchMarket(t Tools, crop, location string) tea.Cmd {
	return func() tea.Msg {
		r := t.GetMarketPrices(context.Background(), crop, location)
		return resultMsg{
			tool:    "Market Advisory",
			query:   crop,
			kind:    history.KindText,
			doc:     document{Title: "Market prices for " + crop, Body: r.Markdown()},
			summary: r.Summary(),
		}
	}
}

func fetchSchemes(t Tools, query string) tea.Cmd {
	return func() tea.Msg {
		r := t.GetSchemeInfo(context.Background(), query, nil)
		return resultMsg{
			tool:    "Subsidy Navigator",
			query:   query,
			kind:    history.KindText,
			doc:     document{Title: "Government schemes", Body: r.Markdown()},
			summary: r.Summary(),
		}
	}
}

func diagnoseImage(t Tools, path string) tea.Cmd {
	return func() tea.Msg {
		img, err := ReadImage(path)
		if err != nil {
			log.Error("unable to read crop photo", "path", path, "error", err)
			return errMsg{err}
		}
		name := filepath.Base(path)
		r := t.DiagnoseCrop(context.Background(), name, img, "")
		return resultMsg{
			tool:    "Crop Diagnosis",
			query:   name,
			kind:    history.KindImage,
			doc:     document{Title: "Diagnosis of " + name, Body: r.Markdown()},
			summary: r.Summary(),
		}
	}
}

// ETC

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for j, v := range l {
		if j > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s%s", i, v)
	}
	return b.String()
}
