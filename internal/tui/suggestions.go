package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/flowday/flowday/internal/board"
	"github.com/flowday/flowday/internal/models"
)

// Suggestions provides autocomplete for the command bar
type Suggestions struct {
	filtered    []SuggestionItem
	selectedIdx int
	visible     bool
	header      string
	command     string // command whose argument is being completed, "" for names
}

// SuggestionItem represents a single autocomplete suggestion
type SuggestionItem struct {
	Text        string
	Description string
	Type        string // "command" or "argument"
}

var commandSuggestions = []SuggestionItem{
	{Text: "add", Description: "Create a task: add <title>", Type: "command"},
	{Text: "move", Description: "Move the selected task: move <status|task id>", Type: "command"},
	{Text: "done", Description: "Toggle the selected task done", Type: "command"},
	{Text: "delete", Description: "Delete the selected task", Type: "command"},
	{Text: "filter", Description: "Switch filter: filter <all|today|upcoming|completed>", Type: "command"},
	{Text: "mode", Description: "Switch view: mode <list|kanban>", Type: "command"},
	{Text: "page", Description: "Jump to page: page <n>", Type: "command"},
	{Text: "reload", Description: "Reload tasks from the server", Type: "command"},
	{Text: "login", Description: "Sign in: login <email> <password>", Type: "command"},
	{Text: "logout", Description: "Sign out", Type: "command"},
	{Text: "whoami", Description: "Show the signed in user", Type: "command"},
	{Text: "quit", Description: "Exit Flowday", Type: "command"},
}

// argumentSuggestions lists the closed argument sets per command.
var argumentSuggestions = map[string][]SuggestionItem{
	"move": {
		{Text: string(models.StatusTodo), Description: "To Do column", Type: "argument"},
		{Text: string(models.StatusInProgress), Description: "In Progress column", Type: "argument"},
		{Text: string(models.StatusDone), Description: "Done column", Type: "argument"},
	},
	"filter": {
		{Text: string(board.FilterAll), Description: "Every task", Type: "argument"},
		{Text: string(board.FilterToday), Description: "Due today", Type: "argument"},
		{Text: string(board.FilterUpcoming), Description: "Due after today", Type: "argument"},
		{Text: string(board.FilterCompleted), Description: "Done tasks", Type: "argument"},
	},
	"mode": {
		{Text: string(board.ModeList), Description: "Paginated list", Type: "argument"},
		{Text: string(board.ModeKanban), Description: "Four columns", Type: "argument"},
	},
}

// NewSuggestions creates a new suggestions handler
func NewSuggestions() *Suggestions {
	return &Suggestions{}
}

// Update updates suggestions based on current input. The first word is
// completed against command names, the second against the command's
// argument set when it has one.
func (s *Suggestions) Update(input string) {
	s.visible = false
	s.filtered = nil
	s.command = ""
	if strings.TrimSpace(input) == "" {
		return
	}

	name, rest, hasArg := strings.Cut(strings.TrimLeft(input, " "), " ")
	if !hasArg {
		s.header = "Commands"
		s.filter(commandSuggestions, name)
		return
	}
	items, ok := argumentSuggestions[name]
	if !ok || strings.Contains(rest, " ") {
		return
	}
	s.header = name
	s.command = name
	s.filter(items, rest)
}

func (s *Suggestions) filter(items []SuggestionItem, query string) {
	query = strings.ToLower(query)
	s.selectedIdx = 0
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item.Text), query) && item.Text != query {
			s.filtered = append(s.filtered, item)
		}
	}
	s.visible = len(s.filtered) > 0
}

// Next moves to the next suggestion
func (s *Suggestions) Next() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx = (s.selectedIdx + 1) % len(s.filtered)
}

// Prev moves to the previous suggestion
func (s *Suggestions) Prev() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx--
	if s.selectedIdx < 0 {
		s.selectedIdx = len(s.filtered) - 1
	}
}

// Selected returns the currently selected suggestion
func (s *Suggestions) Selected() *SuggestionItem {
	if !s.visible || len(s.filtered) == 0 || s.selectedIdx >= len(s.filtered) {
		return nil
	}
	return &s.filtered[s.selectedIdx]
}

// Complete returns input with the selected suggestion applied.
func (s *Suggestions) Complete() (string, bool) {
	sel := s.Selected()
	if sel == nil {
		return "", false
	}
	if s.command != "" {
		return s.command + " " + sel.Text, true
	}
	return sel.Text + " ", true
}

// IsVisible returns whether suggestions are currently visible
func (s *Suggestions) IsVisible() bool {
	return s.visible && len(s.filtered) > 0
}

// Render renders the suggestions dropdown
func (s *Suggestions) Render(width int) string {
	if !s.IsVisible() {
		return ""
	}

	var b strings.Builder

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Padding(0, 1)
	if width > 4 {
		boxStyle = boxStyle.Width(width - 4)
	}

	itemStyle := lipgloss.NewStyle().Foreground(fgColor)
	descStyle := lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	activeStyle := lipgloss.NewStyle().
		Background(primaryColor).
		Foreground(fgColor).
		Bold(true)

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(s.header))
	b.WriteString("\n")

	// Show max 5 suggestions
	maxVisible := 5
	for i, item := range s.filtered {
		if i >= maxVisible {
			b.WriteString(descStyle.Render(fmt.Sprintf("  ... and %d more", len(s.filtered)-maxVisible)))
			break
		}
		if i == s.selectedIdx {
			b.WriteString(activeStyle.Render("▶ "+item.Text) + " " + activeStyle.Render(item.Description))
		} else {
			b.WriteString(itemStyle.Render("  "+item.Text) + " " + descStyle.Render(item.Description))
		}
		b.WriteString("\n")
	}

	return boxStyle.Render(b.String())
}
