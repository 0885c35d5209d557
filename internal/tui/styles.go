package tui

import "github.com/charmbracelet/lipgloss"

var (
	brand       = lipgloss.Color("#101F38")
	accent      = lipgloss.Color("#8BC34A")
	destructive = lipgloss.Color("#e53935")
	muted       = lipgloss.Color("#6b7785")
	warning     = lipgloss.Color("#FFC107")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(brand).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().Foreground(muted)
	errorStyle  = lipgloss.NewStyle().Foreground(destructive)
	statusStyle = lipgloss.NewStyle().Foreground(warning)

	labelStyle        = lipgloss.NewStyle().Width(16)
	focusedLabelStyle = labelStyle.Bold(true).Foreground(accent)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brand).
			Padding(1, 2).
			Width(cardWidth)

	// Terminals cannot blend, so a faded card is drawn faint.
	fadedCardStyle = cardStyle.BorderForeground(muted).Faint(true)

	likeBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Border(lipgloss.NormalBorder()).
			BorderForeground(accent).
			Padding(0, 1)

	nopeBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(destructive).
			Border(lipgloss.NormalBorder()).
			BorderForeground(destructive).
			Padding(0, 1)

	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(accent).
			Padding(1, 4)

	winnerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	barStyle    = lipgloss.NewStyle().Foreground(accent)
)
