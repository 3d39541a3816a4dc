package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// Command is a parsed command bar line.
type Command struct {
	Name string
	Args []string
}

// Arg returns the i-th argument or "".
func (c Command) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// Text joins all arguments.
func (c Command) Text() string {
	return strings.Join(c.Args, " ")
}

type arity struct {
	min, max int // max < 0 means unbounded
	usage    string
}

var commandArity = map[string]arity{
	"add":    {1, -1, "add <title>"},
	"move":   {1, 1, "move <status|task id>"},
	"done":   {0, 0, "done"},
	"delete": {0, 0, "delete"},
	"filter": {1, 1, "filter <all|today|upcoming|completed>"},
	"mode":   {1, 1, "mode <list|kanban>"},
	"page":   {1, 1, "page <n>"},
	"reload": {0, 0, "reload"},
	"login":  {2, 2, "login <email> <password>"},
	"logout": {0, 0, "logout"},
	"whoami": {0, 0, "whoami"},
	"quit":   {0, 0, "quit"},
}

// ParseCommand splits line into a command and checks its arity.
func ParseCommand(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, ErrUnknownCommand
	}
	cmd := Command{Name: strings.ToLower(parts[0]), Args: parts[1:]}
	if cmd.Name == "q" || cmd.Name == "exit" {
		cmd.Name = "quit"
	}
	ar, ok := commandArity[cmd.Name]
	if !ok {
		return cmd, fmt.Errorf("%w: %s", ErrUnknownCommand, parts[0])
	}
	if len(cmd.Args) < ar.min || (ar.max >= 0 && len(cmd.Args) > ar.max) {
		return cmd, fmt.Errorf("%w: %s", ErrUsage, ar.usage)
	}
	if cmd.Name == "page" {
		if n, err := strconv.Atoi(cmd.Args[0]); err != nil || n < 1 {
			return cmd, fmt.Errorf("%w: %s", ErrUsage, ar.usage)
		}
	}
	return cmd, nil
}

// CmdBar manages the command input bar
type CmdBar struct {
	input       textinput.Model
	suggestions *Suggestions
	focused     bool
}

// NewCmdBar creates a new command bar
func NewCmdBar() *CmdBar {
	ti := textinput.New()
	ti.Placeholder = "add <title> | move <status> | filter <name> | login | whoami | quit"
	ti.CharLimit = 256
	ti.Width = 80
	ti.Cursor.SetMode(cursor.CursorStatic)
	return &CmdBar{
		input:       ti,
		suggestions: NewSuggestions(),
	}
}

// Focus focuses the command bar
func (m *CmdBar) Focus() tea.Cmd {
	m.focused = true
	return m.input.Focus()
}

// Blur unfocuses the command bar
func (m *CmdBar) Blur() {
	m.focused = false
	m.input.Blur()
	m.input.SetValue("")
	m.suggestions.Update("")
}

func (m *CmdBar) Focused() bool { return m.focused }

func (m *CmdBar) SetWidth(w int) {
	if w > 6 {
		m.input.Width = w - 6
	}
}

// Submit returns the current input and blurs
func (m *CmdBar) Submit() string {
	val := strings.TrimSpace(m.input.Value())
	m.Blur()
	return val
}

// Update handles keys while focused. submitted is non-empty when enter
// was pressed on a line with no pending suggestion.
func (m *CmdBar) Update(msg tea.Msg) (submitted string, cmd tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.Blur()
			return "", nil
		case "up":
			m.suggestions.Prev()
			return "", nil
		case "down":
			m.suggestions.Next()
			return "", nil
		case "tab":
			if line, ok := m.suggestions.Complete(); ok {
				m.input.SetValue(line)
				m.input.CursorEnd()
				m.suggestions.Update(line)
			}
			return "", nil
		case "enter":
			return m.Submit(), nil
		}
	}

	m.input, cmd = m.input.Update(msg)
	m.suggestions.Update(m.input.Value())
	return "", cmd
}

// View renders the command bar
func (m *CmdBar) View(width int) string {
	if !m.focused {
		return ""
	}
	out := cmdBarStyle.Render(promptStyle.Render(": ") + m.input.View())
	if m.suggestions.IsVisible() {
		out += "\n" + m.suggestions.Render(width)
	}
	return out
}
