package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#1F4E79", Dark: "#7FB3E6"}
	muted  = lipgloss.AdaptiveColor{Light: "#5F6B7A", Dark: "#8A96A3"}

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accent)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(muted)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(accent)

	cardTitleStyle    = lipgloss.NewStyle().Bold(true)
	cardSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	detailStyle       = lipgloss.NewStyle().PaddingLeft(4).Foreground(muted)

	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedHeader = headerStyle.Reverse(true)
	matchStyle     = lipgloss.NewStyle().Background(lipgloss.Color("#FFF3A3")).Foreground(lipgloss.Color("#000000"))

	statusStyle = lipgloss.NewStyle().Foreground(muted)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C62828"))
)
