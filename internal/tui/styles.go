package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/flowday/flowday/internal/board"
	"github.com/flowday/flowday/internal/models"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	successColor   = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	fgColor        = lipgloss.Color("#F9FAFB")
	cyanColor      = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	cmdBarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true).
			Padding(0, 1)

	carriedStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true).
			Padding(0, 1)

	hoverStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(warningColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	columnHoverStyle = columnStyle.Copy().
				BorderForeground(warningColor)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(secondaryColor)

	pageStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	currentPageStyle = lipgloss.NewStyle().
				Foreground(fgColor).
				Background(secondaryColor).
				Bold(true).
				Padding(0, 1)

	infoStyle  = lipgloss.NewStyle().Foreground(successColor)
	errorStyle = lipgloss.NewStyle().Foreground(errorColor)
	userStyle  = lipgloss.NewStyle().Foreground(cyanColor)
)

var columnColors = map[board.Column]lipgloss.Color{
	board.ColumnTodo:       mutedColor,
	board.ColumnInProgress: cyanColor,
	board.ColumnExpired:    errorColor,
	board.ColumnDone:       successColor,
}

var priorityColors = map[models.Priority]lipgloss.Color{
	models.PriorityLow:    mutedColor,
	models.PriorityMedium: warningColor,
	models.PriorityHigh:   errorColor,
}

func columnBadge(c board.Column) string {
	return lipgloss.NewStyle().Foreground(columnColors[c]).Render("●")
}

func priorityBadge(p models.Priority) string {
	return lipgloss.NewStyle().Foreground(priorityColors[p]).Render(string(p))
}
