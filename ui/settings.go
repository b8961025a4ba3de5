package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mykisan/kisan/internal/content"
	"github.com/mykisan/kisan/internal/settings"
)

const appVersion = "MyKisanAI v1.0.0"

// SettingsChangedMsg tells the TUI the settings file changed on disk.
type SettingsChangedMsg settings.Settings

type settingsToggledMsg struct {
	settings settings.Settings
	err      error
}

// settingsRow is a selectable line: an item from a group, or sign out.
type settingsRow struct {
	item    content.SettingsItem
	signOut bool
}

type settingsModel struct {
	common *commonModel
	groups []content.SettingsGroup
	rows   []settingsRow
	cursor int
}

func newSettingsModel(common *commonModel) settingsModel {
	groups := content.SettingsGroups()
	var rows []settingsRow
	for _, g := range groups {
		for _, it := range g.Items {
			rows = append(rows, settingsRow{item: it})
		}
	}
	rows = append(rows, settingsRow{signOut: true})
	return settingsModel{common: common, groups: groups, rows: rows}
}

func (m settingsModel) selected() settingsRow {
	return m.rows[m.cursor]
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m settingsModel) view() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Settings"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Customize your MyKisanAI experience"))
	b.WriteString("\n\n")

	name := m.common.user
	if name == "" {
		name = "Farmer"
	}
	initial := string([]rune(name)[0])
	profile := fmt.Sprintf("%s  %s\n    %s\n    %s",
		logoStyle.Render(initial),
		headingStyle.Render(name),
		dimStyle.Render("farmer@example.com"),
		subtleStyle.Render("Karnataka, India"),
	)
	b.WriteString(cardStyle.Render(profile))
	b.WriteString("\n")

	row := 0
	for _, g := range m.groups {
		b.WriteString(sectionStyle.Render(g.Title))
		b.WriteString("\n")
		for _, it := range g.Items {
			b.WriteString(m.rowView(row, it))
			b.WriteString("\n")
			row++
		}
	}

	b.WriteString("\n")
	if m.cursor == row {
		b.WriteString(destructiveToastStyle.Render("Sign Out"))
	} else {
		b.WriteString(buttonStyle.Render("Sign Out"))
	}
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render(appVersion))
	b.WriteString(helpStyle.Render("\n↑/↓ move • enter select • 1-5 tabs"))
	return b.String()
}

func (m settingsModel) rowView(row int, it content.SettingsItem) string {
	desc := it.Description
	if it.Key == "language" {
		desc = m.common.settings.LanguageName()
	}

	var control string
	switch it.Action {
	case content.SettingsToggle:
		if m.common.settings.Enabled(it.Key) {
			control = selectedStyle.Render("[on] ")
		} else {
			control = subtleStyle.Render("[off]")
		}
	default:
		control = subtleStyle.Render("  ›  ")
	}

	label := it.Label
	prefix := "  "
	if row == m.cursor {
		label = selectedStyle.Render(label)
		prefix = selectedStyle.Render("› ")
	}
	return fmt.Sprintf("%s%s %s  %s", prefix, control, label, dimStyle.Render(desc))
}

// COMMANDS

func toggleSetting(p Preferences, key string) tea.Cmd {
	return func() tea.Msg {
		st, err := p.Toggle(key)
		if err != nil {
			log.Error("unable to save setting", "key", key, "error", err)
		}
		return settingsToggledMsg{settings: st, err: err}
	}
}
