package ui

import "github.com/charmbracelet/lipgloss"

var (
	normalDim = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray   = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	darkGray  = lipgloss.AdaptiveColor{Light: "#DDDADA", Dark: "#3C3C3C"}
	green     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	leaf      = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	soil      = lipgloss.AdaptiveColor{Light: "#8D6E63", Dark: "#BCAAA4"}
	sun       = lipgloss.AdaptiveColor{Light: "#F9A825", Dark: "#FFD54F"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle   = lipgloss.NewStyle().Foreground(gray)
	dimStyle      = lipgloss.NewStyle().Foreground(normalDim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(leaf)
	headingStyle  = lipgloss.NewStyle().Bold(true)
	sectionStyle  = lipgloss.NewStyle().Foreground(soil).Bold(true).MarginTop(1)
	selectedStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	sunStyle      = lipgloss.NewStyle().Foreground(sun)

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(darkGreen).
			Bold(true).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(midGray).
			Padding(0, 1)

	selectedCardStyle = cardStyle.
				BorderForeground(green)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true, true, false, true).
			BorderForeground(green).
			Padding(1, 2)

	chipStyle = lipgloss.NewStyle().
			Foreground(leaf).
			Background(darkGray).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(gray).
			Padding(0, 2)

	activeButtonStyle = buttonStyle.
				Background(darkGreen)

	disabledButtonStyle = buttonStyle.
				Foreground(midGray).
				Background(darkGray)

	voiceIdleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(darkGreen).
			Padding(1, 4)

	voiceListeningStyle = voiceIdleStyle.
				Background(red)

	voiceProcessingStyle = voiceIdleStyle.
				Background(gray)

	toastStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Background(darkGreen).
			Padding(0, 1)

	destructiveToastStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Padding(0, 1)

	navStyle = lipgloss.NewStyle().
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(midGray)

	navItemStyle       = lipgloss.NewStyle().Foreground(gray).Padding(0, 2)
	activeNavItemStyle = lipgloss.NewStyle().Foreground(green).Bold(true).Padding(0, 2)

	helpStyle = lipgloss.NewStyle().Foreground(normalDim).MarginTop(1)

	statusBarBg = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(gray).
				Background(statusBarBg).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render
)
