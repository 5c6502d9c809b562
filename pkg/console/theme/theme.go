// Package theme holds the colors and lipgloss styles shared by the
// console views.
package theme

import "github.com/charmbracelet/lipgloss"

var (
	Primary      = lipgloss.Color("212")
	Error        = lipgloss.Color("196")
	Warning      = lipgloss.Color("214")
	Success      = lipgloss.Color("42")
	Info         = lipgloss.Color("45")
	Muted        = lipgloss.Color("241")
	BorderNormal = lipgloss.Color("240")
)

// Text styles
var (
	Title     = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	FieldName = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(10)
	MutedText = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error)
	InfoText  = lipgloss.NewStyle().Foreground(Info)
	Help      = lipgloss.NewStyle().Foreground(Muted).Italic(true)
)

// Amount styles. Owed marks a positive balance still due; Settled is used
// for zero or negative balances.
var (
	Owed    = lipgloss.NewStyle().Foreground(Warning).Bold(true)
	Settled = lipgloss.NewStyle().Foreground(Success)
)

// Field box styles
var (
	Field = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderNormal).
		Padding(0, 1)

	FieldFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Info).
		Padding(0, 1)
)

// List styles
var (
	ListItemNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	ListItemFocused = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	ListCursor = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)

// Button styles
var (
	Button = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Background(lipgloss.Color("238")).
		Padding(0, 2)

	ButtonFocused = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(Primary).
			Bold(true).
			Padding(0, 2)
)
