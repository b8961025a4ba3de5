package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// The simulated sign-in always yields this farmer.
const demoUser = "Ravi Kumar"

type loginOption int

const (
	loginGoogle loginOption = iota
	loginPhone
)

type loginModel struct {
	common *commonModel
	cursor loginOption
}

func newLoginModel(common *commonModel) loginModel {
	return loginModel{common: common}
}

// selected reports whether enter on the current option signs in. Phone
// sign-in is not available.
func (m loginModel) selected() bool {
	return m.cursor == loginGoogle
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k", "shift+tab":
			m.cursor = loginGoogle
		case "down", "j", "tab":
			m.cursor = loginPhone
		}
	}
	return m, nil
}

func (m loginModel) view() string {
	google := buttonStyle.Render("Continue with Google")
	if m.cursor == loginGoogle {
		google = activeButtonStyle.Render("Continue with Google")
	}
	phone := disabledButtonStyle.Render("Continue with Phone")

	var b strings.Builder
	b.WriteString(headingStyle.Render("Welcome to MyKisanAI"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Sign in to get personalized farming advice"))
	b.WriteString("\n\n")
	b.WriteString(google)
	b.WriteString("\n\n")
	b.WriteString(phone)
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Phone sign-in coming soon"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter sign in • esc back"))

	return lipgloss.Place(m.common.width, m.common.height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Align(lipgloss.Center).Render(b.String()))
}
