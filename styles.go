package main

import "github.com/charmbracelet/lipgloss"

// Unified color palette
var (
	primaryColor   = lipgloss.Color("109")
	accentColor    = lipgloss.Color("171")
	barBackground  = lipgloss.Color("233")
	stripeColor    = lipgloss.Color("234")
	mutedColor     = lipgloss.Color("239")
	subtleColor    = lipgloss.Color("244")
	warningColor   = lipgloss.Color("179")
	dangerColor    = lipgloss.Color("167")
	highlightColor = lipgloss.Color("171")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Background(barBackground)

	titleNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Background(barBackground)

	followStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(warningColor).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle()

	stripeStyle = lipgloss.NewStyle().
			Background(stripeColor)

	columnStyle = lipgloss.NewStyle()

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor)

	invalidRecordStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	emptyStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(dangerColor)

	scrollbarTrackStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	scrollbarThumbStyle = lipgloss.NewStyle().
				Foreground(highlightColor)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// Help bar styles - persistent bottom bar
	helpBarStyle = lipgloss.NewStyle().
			Foreground(subtleColor).
			Background(barBackground)

	helpBarInfoStyle = lipgloss.NewStyle().
				Foreground(subtleColor).
				Background(barBackground)
)
