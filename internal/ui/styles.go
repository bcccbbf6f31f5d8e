package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarning   = lipgloss.Color("214") // Amber
	colorError     = lipgloss.Color("196") // Red
	colorInfo      = lipgloss.Color("39")  // Blue
)

// Title style for the view heading.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// SelectedRow style for the highlighted table row.
var SelectedRow = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary)

// NormalRow style for other table rows.
var NormalRow = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// InactiveRow style for deactivated users.
var InactiveRow = lipgloss.NewStyle().
	Foreground(colorSecondary)

// TableHeader style for column titles.
var TableHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorSecondary).
	Underline(true)

// StatusActive badge.
var StatusActive = lipgloss.NewStyle().
	Foreground(colorSuccess)

// StatusInactive badge.
var StatusInactive = lipgloss.NewStyle().
	Foreground(colorMuted)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// PagerText style for the pagination line.
var PagerText = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// HelpStyle for placeholder text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// FilterBar style for the filter row.
var FilterBar = lipgloss.NewStyle().
	Padding(0, 1)

// FilterLabel style for filter field labels.
var FilterLabel = lipgloss.NewStyle().
	Foreground(colorSecondary)

// FilterLabelFocused style for the label of the focused field.
var FilterLabelFocused = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// Notification styles by severity.
var (
	NotifySuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(colorSuccess).Padding(0, 1)
	NotifyInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(colorInfo).Padding(0, 1)
	NotifyWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(colorWarning).Padding(0, 1)
	NotifyError   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(colorError).Bold(true).Padding(0, 1)
)

// Dialog frames the delete confirmation and edit form.
var Dialog = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DialogTitle style for dialog headings.
var DialogTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginBottom(1)

// FieldError style for form validation messages.
var FieldError = lipgloss.NewStyle().
	Foreground(colorError)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	BorderForeground(colorMuted).
	Padding(1, 2)

// DebugHeaderStyle for section headings in the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
