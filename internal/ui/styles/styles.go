// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

// Color tokens for the application chrome.
var (
	BorderDefaultColor lipgloss.TerminalColor = lipgloss.Color("240")
	BorderFocusedColor lipgloss.TerminalColor = lipgloss.Color("69")
	TitleColor         lipgloss.TerminalColor = lipgloss.Color("252")
	MutedColor         lipgloss.TerminalColor = lipgloss.Color("245")
	AccentColor        lipgloss.TerminalColor = lipgloss.Color("212")
	ErrorColor         lipgloss.TerminalColor = lipgloss.Color("203")
)

// Styles for the tab strip.
var (
	TabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	TabInactive = lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 1)
)

// Styles for the status bar.
var (
	StatusBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	StatusError = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Foreground(AccentColor).
			Background(lipgloss.Color("236"))
)

// Styles for sidebar content.
var (
	SidebarLabel = lipgloss.NewStyle().Foreground(MutedColor)
	SidebarValue = lipgloss.NewStyle().Foreground(TitleColor)
)
